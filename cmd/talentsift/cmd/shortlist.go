package cmd

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talentsift/talentsift/internal/ui"
)

func newShortlistCmd() *cobra.Command {
	var (
		format  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "shortlist <query>",
		Short: "Build a shortlist from a free-text job description",
		Long: `Build a shortlist from a free-text job description.

The query is parsed into required skills, experience, and location
(via the configured LLM, or keyword extraction when no API key is
set), then candidates are retrieved, fused, and ranked with evidence.
Progress streams live; pass --verbose to see the agent's tool trace.

Examples:
  talentsift shortlist "senior go engineer with kafka, 5+ years"
  talentsift shortlist "python, django, aws" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShortlist(cmd, strings.Join(args, " "), format, verbose)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show agent thoughts and tool calls")
	return cmd
}

func runShortlist(cmd *cobra.Command, query, format string, verbose bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	events := a.pipeline().Run(cmd.Context(), query)

	if format == "json" {
		// Drain silently and emit only the final payload.
		quiet := ui.NewStreamRenderer(ui.NewConfig(io.Discard))
		result, err := quiet.Consume(events)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	cfg := ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(plainMode), ui.WithNoColor(noColor), ui.WithVerbose(verbose))

	result, err := ui.NewStreamRenderer(cfg).Consume(events)
	if err != nil {
		return err
	}
	ui.NewResultsRenderer(cfg).RenderShortlist(result)
	return nil
}
