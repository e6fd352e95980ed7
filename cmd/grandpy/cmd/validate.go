package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
	"github.com/tomlemeuch/grandpy/internal/output"
	"github.com/tomlemeuch/grandpy/internal/validation"
)

// validateOptions holds CLI flags for validate.
type validateOptions struct {
	file   string
	format string // "text", "json"
}

func newValidateCmd(a *app) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the ranking against reference questions",
		Long: `Rank a set of reference questions with the current configuration
and check each against the entity it is about.

  tier1     the expected entity must rank first
  tier2     the expected entity must be ranked
  negative  nothing may be ranked

Without --file, the built-in questions are used. Exits non-zero when a
question fails, so weight or word-list changes can be checked in CI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runValidate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "YAML question set (default: built-in)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func (a *app) runValidate(ctx context.Context, w io.Writer, opts validateOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (use text or json)", opts.format)
	}

	queries, err := validation.DefaultQueries()
	if opts.file != "" {
		queries, err = validation.LoadQueriesFile(opts.file)
	}
	if err != nil {
		return err
	}

	e, err := a.newEngine(ctx)
	if err != nil {
		return err
	}
	defer a.writeMetrics(e)

	res, err := validation.NewValidator(e.controller).Run(ctx, queries)
	if err != nil {
		return err
	}

	out := output.New(w)
	if opts.format == "json" {
		if err := out.JSON(res); err != nil {
			return err
		}
	} else {
		printValidation(out, res)
	}

	if !res.Passed() {
		return gperrors.New(gperrors.ErrCodeInvalidInput,
			fmt.Sprintf("%d of %d questions failed", len(res.Failures()), res.TotalTests), nil).
			WithSuggestion("Run 'grandpy rank --explain' on the failed questions")
	}
	return nil
}

func printValidation(out *output.Writer, res *validation.ValidationResult) {
	rows := make([][]string, 0, res.TotalTests)
	for _, set := range [][]validation.TestResult{res.Tier1, res.Tier2, res.Negative} {
		for _, r := range set {
			status := "PASS"
			if !r.Passed {
				status = "FAIL"
			}
			expected := r.Spec.Expected
			if expected == "" {
				expected = "-"
			}
			rows = append(rows, []string{r.Spec.ID, status, expected, strings.Join(r.Ranked, ", ")})
		}
	}
	out.Table([]string{"ID", "STATUS", "EXPECTED", "RANKED"}, rows)
	out.Newline()

	summary := fmt.Sprintf("tier1 %d/%d, tier2 %d/%d, negative %d/%d",
		res.Tier1Pass, len(res.Tier1), res.Tier2Pass, len(res.Tier2), res.NegPass, len(res.Negative))
	if res.Passed() {
		out.Success(summary)
	} else {
		out.Error(summary)
	}
}
