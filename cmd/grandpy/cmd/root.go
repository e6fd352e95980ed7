// Package cmd provides the CLI commands for GrandPy.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomlemeuch/grandpy/internal/config"
	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
	"github.com/tomlemeuch/grandpy/internal/logging"
	"github.com/tomlemeuch/grandpy/internal/profiling"
	"github.com/tomlemeuch/grandpy/pkg/version"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	debug   bool
	dir     string
	profile profiling.Options

	cfg            *config.Config
	loggingCleanup func()
	profiler       *profiling.Session
}

// NewRootCmd creates the root command for the grandpy CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "grandpy",
		Short: "Find the place or name a question is about",
		Long: `GrandPy reads a free-text question, runs several independent
extraction passes over it and ranks the words and phrases they agree on.
The best candidate is the place or proper noun the question is about.

Examples:
  grandpy rank "Salut GrandPy ! Est-ce que tu connais l'adresse d'Openclassrooms à Paris ?"
  grandpy rank --best "Je cherche la place Carnot"
  grandpy load cities ./cities.txt`,
		Version:           version.Short(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.start,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.stop()
		},
	}

	cmd.SetVersionTemplate("grandpy version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to ~/.grandpy/logs/")
	cmd.PersistentFlags().StringVarP(&a.dir, "dir", "C", "", "Directory holding .grandpy.yaml (default: current directory)")

	cmd.PersistentFlags().StringVar(&a.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newRankCmd(a))
	cmd.AddCommand(newLoadCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newLogsCmd(a))
	cmd.AddCommand(newValidateCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// start loads the configuration and installs the logger.
func (a *app) start(_ *cobra.Command, _ []string) error {
	dir := a.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	a.dir = dir

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := cfg.LoggingConfig()
	if a.debug {
		logCfg.Level = "debug"
		if logCfg.FilePath == "" {
			logCfg.FilePath = logging.DefaultLogPath()
		}
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.loggingCleanup = cleanup

	slog.Debug("grandpy_started",
		slog.String("version", version.Short()),
		slog.String("dir", dir),
		slog.String("log_file", logCfg.FilePath))

	if a.profile.Enabled() {
		session, err := profiling.Start(a.profile)
		if err != nil {
			return err
		}
		a.profiler = session
	}
	return nil
}

// stop writes the requested profiles and closes the log file.
func (a *app) stop() error {
	var err error
	if a.profiler != nil {
		err = a.profiler.Stop()
		slog.Debug("profiling_stopped",
			slog.String("heap_in_use", profiling.FormatBytes(profiling.HeapInUse())))
		a.profiler = nil
	}
	if a.loggingCleanup != nil {
		a.loggingCleanup()
		a.loggingCleanup = nil
	}
	return err
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprint(os.Stderr, gperrors.FormatForCLI(err))
	}
	return err
}
