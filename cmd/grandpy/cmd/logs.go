package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/tomlemeuch/grandpy/internal/logging"
	"github.com/tomlemeuch/grandpy/internal/output"
)

// logsOptions holds CLI flags for logs.
type logsOptions struct {
	lines   int
	level   string
	filter  string
	noColor bool
	logFile string
}

func newLogsCmd(a *app) *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View GrandPy logs",
		Long: `Show the last entries of the GrandPy log file.

The log file is logging.file from the configuration, or
~/.grandpy/logs/grandpy.log when commands run with --debug.

Examples:
  grandpy logs                 # Show last 50 lines
  grandpy logs -n 200          # Show last 200 lines
  grandpy logs --level warn    # Only warnings and errors
  grandpy logs --filter cities # Filter by pattern`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.logFile == "" {
				opts.logFile = a.cfg.Logging.File
			}
			path, err := logging.FindLogFile(opts.logFile)
			if err != nil {
				return err
			}

			var pattern *regexp.Regexp
			if opts.filter != "" {
				pattern, err = regexp.Compile(opts.filter)
				if err != nil {
					return fmt.Errorf("invalid filter pattern: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			viewer := logging.NewViewer(logging.ViewerConfig{
				Level:   opts.level,
				Pattern: pattern,
				NoColor: opts.noColor || output.DetectNoColor() || !output.IsTTY(w),
			}, w)

			entries, err := viewer.Tail(path, opts.lines)
			if err != nil {
				return err
			}
			viewer.Print(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter by keyword/pattern (regex)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file")

	return cmd
}
