package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomlemeuch/grandpy/internal/output"
	"github.com/tomlemeuch/grandpy/internal/parser"
)

// rankOptions holds CLI flags for rank.
type rankOptions struct {
	format  string // "text", "json"
	best    bool
	explain bool
}

func newRankCmd(a *app) *cobra.Command {
	var opts rankOptions

	cmd := &cobra.Command{
		Use:   "rank <query>",
		Short: "Rank the entities a query is about",
		Long: `Rank the words and phrases of a query by how likely each is the
place or name the query is about. Only candidates scoring above the mean
are printed, best first.

With "-" as the only argument, one query is read per line of stdin.

Examples:
  grandpy rank "Où se trouve Saint-Étienne ?"
  grandpy rank --best "Je cherche la place Carnot"
  grandpy rank --explain "Connais-tu la rue de la République à Lyon ?"
  grandpy rank --format json - < questions.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case "text", "json":
			default:
				return fmt.Errorf("unknown format %q (use text or json)", opts.format)
			}

			queries, err := readQueries(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return a.runRank(cmd.Context(), cmd.OutOrStdout(), queries, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.best, "best", false, "Print only the best candidate")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Show every pass output and score")

	return cmd
}

// readQueries joins args into one query, or reads non-blank stdin lines
// when args is "-".
func readQueries(in io.Reader, args []string) ([]string, error) {
	if len(args) != 1 || args[0] != "-" {
		return []string{strings.Join(args, " ")}, nil
	}

	var queries []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			queries = append(queries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return queries, nil
}

func (a *app) runRank(ctx context.Context, w io.Writer, queries []string, opts rankOptions) error {
	e, err := a.newEngine(ctx)
	if err != nil {
		return err
	}
	defer a.writeMetrics(e)

	out := output.New(w)
	for i, query := range queries {
		if err := ctx.Err(); err != nil {
			return err
		}

		var res rankResult
		if opts.explain {
			res = explainResult(e.controller.Explain(ctx, query))
		} else {
			res = rankResult{Query: query, Ranked: e.controller.Rank(ctx, query)}
		}

		if opts.format == "json" {
			if err := out.JSON(res.view(opts)); err != nil {
				return err
			}
			continue
		}

		if len(queries) > 1 {
			if i > 0 {
				out.Newline()
			}
			out.Header(query)
		}
		printRankText(out, res, opts)
	}
	return nil
}

// rankResult is the outcome of one query, as printed.
type rankResult struct {
	Query  string      `json:"query"`
	Ranked []string    `json:"ranked"`
	Best   string      `json:"best,omitempty"`
	Mean   *float64    `json:"mean,omitempty"`
	Passes []passView  `json:"passes,omitempty"`
	Scores []scoreView `json:"scores,omitempty"`
}

// bestView is the JSON form of --best without --explain.
type bestView struct {
	Query string `json:"query"`
	Best  string `json:"best"`
	Found bool   `json:"found"`
}

type passView struct {
	Name   string   `json:"name"`
	Weight float64  `json:"weight"`
	Tokens []string `json:"tokens"`
	Error  string   `json:"error,omitempty"`
}

type scoreView struct {
	Token string  `json:"token"`
	Score float64 `json:"score"`
	Kept  bool    `json:"kept"`
}

func explainResult(exp parser.Explanation) rankResult {
	mean := exp.Mean
	res := rankResult{
		Query:  exp.Query,
		Ranked: parser.Texts(exp.Ranked),
		Mean:   &mean,
	}
	for _, o := range exp.Outputs {
		pv := passView{Name: o.Name, Weight: o.Weight, Tokens: o.Tokens}
		if pv.Tokens == nil {
			pv.Tokens = []string{}
		}
		if o.Err != nil {
			pv.Error = o.Err.Error()
		}
		res.Passes = append(res.Passes, pv)
	}
	for _, c := range exp.Candidates {
		res.Scores = append(res.Scores, scoreView{Token: c.Token, Score: c.Score, Kept: c.Score > exp.Mean})
	}
	return res
}

// view returns the JSON value printed for r.
func (r rankResult) view(opts rankOptions) any {
	if r.Ranked == nil {
		r.Ranked = []string{}
	}
	if !opts.best {
		return r
	}
	if len(r.Ranked) > 0 {
		r.Best = r.Ranked[0]
	}
	if opts.explain {
		return r
	}
	return bestView{Query: r.Query, Best: r.Best, Found: r.Best != ""}
}

func printRankText(out *output.Writer, res rankResult, opts rankOptions) {
	if opts.explain {
		rows := make([][]string, 0, len(res.Passes))
		for _, p := range res.Passes {
			tokens := strings.Join(p.Tokens, ", ")
			if p.Error != "" {
				tokens = "error: " + p.Error
			}
			rows = append(rows, []string{p.Name, fmt.Sprintf("%.1f", p.Weight), tokens})
		}
		out.Table([]string{"PASS", "WEIGHT", "TOKENS"}, rows)
		out.Newline()

		rows = make([][]string, 0, len(res.Scores))
		for _, s := range res.Scores {
			kept := ""
			if s.Kept {
				kept = "yes"
			}
			rows = append(rows, []string{s.Token, fmt.Sprintf("%.3f", s.Score), kept})
		}
		out.Table([]string{"CANDIDATE", "SCORE", "KEPT"}, rows)
		if res.Mean != nil {
			out.Line(fmt.Sprintf("mean: %.3f", *res.Mean))
		}
		out.Newline()
	}

	if len(res.Ranked) == 0 {
		out.Warning("No entity found")
		return
	}
	if opts.best {
		out.Line(res.Ranked[0])
		return
	}
	out.Ranked(res.Ranked)
}
