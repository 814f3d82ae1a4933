package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/internal/session"
	"github.com/talentsift/talentsift/internal/ui"
)

// searchOptions holds CLI flags for classic search.
type searchOptions struct {
	skills   []string
	mode     string
	minMatch int
	minYOE   int
	location string
	limit    int
	rerank   bool
	format   string
	saveAs   string
	verbose  bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search candidates by required skills",
		Long: `Search candidates by required skills.

Skill names are canonicalized, so aliases like "k8s" or "py" work.
match_all requires every skill; match_at_least requires --min-match
of them.

Examples:
  talentsift search --skills python,kafka
  talentsift search --skills go,aws,terraform --mode match_at_least --min-match 2
  talentsift search --skills python --min-yoe 5 --location singapore --format json
  talentsift search --skills go,kafka --save backend-sg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.skills, "skills", "s", nil, "Required skills (comma-separated)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Matching mode: match_all (default), match_at_least")
	cmd.Flags().IntVar(&opts.minMatch, "min-match", 0, "Minimum skills to match (with match_at_least)")
	cmd.Flags().IntVar(&opts.minYOE, "min-yoe", 0, "Minimum total years of experience")
	cmd.Flags().StringVar(&opts.location, "location", "", "Filter by country (case-insensitive)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().BoolVar(&opts.rerank, "rerank", false, "Apply cross-encoder reranking")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVar(&opts.saveAs, "save", "", "Save this query as a named search")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show retrieval detail")
	_ = cmd.MarkFlagRequired("skills")

	return cmd
}

func runSearch(cmd *cobra.Command, opts searchOptions) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	req := search.Request{
		Skills:          opts.skills,
		Mode:            opts.mode,
		MinMatch:        opts.minMatch,
		MinYOE:          opts.minYOE,
		LocationCountry: opts.location,
		Limit:           opts.limit,
		EnableRerank:    opts.rerank,
	}

	resp, err := a.engine.Search(cmd.Context(), req)
	if err != nil {
		return err
	}

	if opts.saveAs != "" {
		mgr, err := a.sessions()
		if err != nil {
			return err
		}
		if err := mgr.Save(session.NewSavedSearch(opts.saveAs, req, "")); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved search %q\n", opts.saveAs)
	}

	return renderResponse(cmd, resp, opts.format, opts.verbose)
}

func renderResponse(cmd *cobra.Command, resp *search.Response, format string, verbose bool) error {
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	renderer := ui.NewResultsRenderer(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(plainMode), ui.WithNoColor(noColor), ui.WithVerbose(verbose)))
	renderer.RenderResponse(resp)
	return nil
}
