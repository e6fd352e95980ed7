package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomlemeuch/grandpy/internal/config"
	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
	"github.com/tomlemeuch/grandpy/internal/gazetteer"
	"github.com/tomlemeuch/grandpy/internal/output"
	"github.com/tomlemeuch/grandpy/internal/ui"
)

// loadOptions holds CLI flags for load.
type loadOptions struct {
	db    string
	all   string
	noTUI bool
}

func newLoadCmd(a *app) *cobra.Command {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:   "load [<category> <file>]",
		Short: "Import word lists into the gazetteer store",
		Long: `Import a word file, one entry per line, into the gazetteer store.
The file replaces the whole list of its category. Blank lines and lines
starting with # are skipped.

Categories: stop_words, dictionary_words, countries, cities.

With --all, every <category>.txt found in the directory is imported.

Examples:
  grandpy load cities ./cities.txt
  grandpy load --all ./words --db ./gazetteer.db`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.all != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := loadJobs(args, opts.all)
			if err != nil {
				return err
			}
			return a.runLoad(cmd.Context(), cmd.OutOrStdout(), a.storePath(opts.db), jobs, opts)
		},
	}

	cmd.Flags().StringVar(&opts.db, "db", "", "Gazetteer store path (default: gazetteer.db_path or ~/.grandpy/gazetteer.db)")
	cmd.Flags().StringVar(&opts.all, "all", "", "Import every <category>.txt of this directory")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "Plain progress output")

	return cmd
}

// loadJob imports one word file.
type loadJob struct {
	category gazetteer.Category
	path     string
}

func loadJobs(args []string, dir string) ([]loadJob, error) {
	if dir == "" {
		c, err := gazetteer.ParseCategory(args[0])
		if err != nil {
			return nil, err
		}
		return []loadJob{{category: c, path: args[1]}}, nil
	}

	var jobs []loadJob
	for _, c := range gazetteer.Categories() {
		path := filepath.Join(dir, c.String()+".txt")
		if _, err := os.Stat(path); err == nil {
			jobs = append(jobs, loadJob{category: c, path: path})
		}
	}
	if len(jobs) == 0 {
		return nil, gperrors.New(gperrors.ErrCodeFileNotFound,
			fmt.Sprintf("no word file found in %s", dir), nil).
			WithSuggestion("Name files after their category, e.g. cities.txt")
	}
	return jobs, nil
}

func (a *app) storePath(flag string) string {
	if flag != "" {
		return flag
	}
	if a.cfg.Gazetteer.DBPath != "" {
		return a.cfg.Gazetteer.DBPath
	}
	return config.DefaultDBPath()
}

func (a *app) runLoad(ctx context.Context, w io.Writer, dbPath string, jobs []loadJob, opts loadOptions) error {
	out := output.New(w)

	lock := gazetteer.NewFileLock(dbPath)
	acquired, err := lock.TryLock()
	if err != nil {
		return gperrors.New(gperrors.ErrCodeFilePermission, "failed to lock gazetteer store", err)
	}
	if !acquired {
		return gperrors.New(gperrors.ErrCodeStoreLocked, "gazetteer store is being loaded by another process", nil).
			WithDetail("lock", lock.Path()).
			WithSuggestion("Wait for the other 'grandpy load' to finish")
	}
	defer func() { _ = lock.Unlock() }()

	store, err := gazetteer.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	renderer := ui.NewRenderer(ui.NewConfig(w,
		ui.WithForcePlain(opts.noTUI),
		ui.WithTitle("Loading "+dbPath),
	))
	if err := renderer.Start(ctx); err != nil {
		return err
	}

	start := time.Now()
	counts := make([]int, len(jobs))
	stats := ui.CompletionStats{}
	var importErr error
	for i, job := range jobs {
		renderer.UpdateProgress(ui.ProgressEvent{
			Stage:    ui.StageImporting,
			Current:  i,
			Total:    len(jobs),
			Category: job.category.String(),
			Path:     job.path,
		})

		n, err := gazetteer.Import(ctx, store, job.category, job.path)
		if err != nil {
			renderer.AddError(ui.ErrorEvent{Category: job.category.String(), Path: job.path, Err: err})
			stats.Errors++
			importErr = err
			break
		}
		counts[i] = n
		stats.Categories++
		stats.Words += n
	}
	stats.Duration = time.Since(start)
	renderer.Complete(stats)
	_ = renderer.Stop()

	if importErr != nil {
		return importErr
	}

	for i, job := range jobs {
		out.Successf("%s: %d words from %s", job.category, counts[i], job.path)
	}

	if a.cfg.Gazetteer.DBPath != dbPath {
		out.Newline()
		out.Status("→", fmt.Sprintf("Set gazetteer.db_path to %s to rank with this store", dbPath))
	}
	return nil
}
