package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/talentsift/talentsift/internal/agent"
	"github.com/talentsift/talentsift/internal/search"
)

// evidenceDisplayLimit caps how much of an evidence snippet is shown
// per line in the terminal.
const evidenceDisplayLimit = 160

// ResultsRenderer prints candidate shortlists to the terminal.
type ResultsRenderer struct {
	out     io.Writer
	styles  Styles
	verbose bool
}

// NewResultsRenderer creates a results renderer.
func NewResultsRenderer(cfg Config) *ResultsRenderer {
	return &ResultsRenderer{
		out:     cfg.Output,
		styles:  cfg.styles(),
		verbose: cfg.Verbose,
	}
}

// RenderResponse displays a classic search response.
func (r *ResultsRenderer) RenderResponse(resp *search.Response) {
	header := fmt.Sprintf("Found %d candidates (%d gated, %dms)",
		resp.Meta.ResultsReturned, resp.Meta.TotalCandidates, resp.Meta.LatencyMs)
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render(header))

	if len(resp.Results) == 0 {
		_, _ = fmt.Fprintln(r.out, r.styles.Dim.Render("No candidates matched the query."))
		return
	}
	for i, c := range resp.Results {
		r.renderCandidate(i+1, c)
	}
	if r.verbose {
		_, _ = fmt.Fprintf(r.out, "%s lexical=%d vector=%d\n",
			r.styles.Label.Render("Retrieval:"),
			resp.Meta.HybridStats.LexicalHits, resp.Meta.HybridStats.VectorHits)
	}
}

// RenderShortlist displays an agentic shortlist result, including the
// extracted mission and the match-quality banner.
func (r *ResultsRenderer) RenderShortlist(res *agent.Result) {
	if res.MissionSpec != nil {
		r.renderMission(res.MissionSpec)
	}

	switch res.MatchQuality {
	case agent.MatchWeak:
		_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Warning.Render(
			"No strong matches found. Showing closest candidates from a broader pass."))
	case agent.MatchNone:
		_, _ = fmt.Fprintf(r.out, "%s\n", r.styles.Error.Render("No matching candidates found."))
		r.renderRefinements(res.SuggestedRefinements)
		return
	}

	header := fmt.Sprintf("Shortlist: %d of %d candidates", len(res.Results), res.TotalCandidatesFound)
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render(header))
	for i, c := range res.Results {
		r.renderCandidate(i+1, c)
	}
	r.renderRefinements(res.SuggestedRefinements)

	if r.verbose && len(res.StageTimings) > 0 {
		_, _ = fmt.Fprintln(r.out, r.styles.Label.Render("Stage timings:"))
		for _, stage := range agent.StageOrder {
			if secs, ok := res.StageTimings[stage]; ok {
				_, _ = fmt.Fprintf(r.out, "  %-18s %.3fs\n", stage, secs)
			}
		}
	}
}

func (r *ResultsRenderer) renderCandidate(rank int, c search.Candidate) {
	headline := c.Headline
	if headline == "" {
		headline = c.ResumeID
	}
	_, _ = fmt.Fprintf(r.out, "%s %s  %s\n",
		r.styles.Dim.Render(fmt.Sprintf("%2d.", rank)),
		r.styles.Headline.Render(headline),
		r.styles.Score.Render(fmt.Sprintf("%.1f", c.FinalScore)))

	var facts []string
	if c.TotalYOE > 0 {
		facts = append(facts, fmt.Sprintf("%d yrs", c.TotalYOE))
	}
	if loc := formatLocation(c.LocationCity, c.LocationCountry); loc != "" {
		facts = append(facts, loc)
	}
	if c.RerankScore > 0 {
		facts = append(facts, fmt.Sprintf("rerank %.2f", c.RerankScore))
	}
	if len(facts) > 0 {
		_, _ = fmt.Fprintf(r.out, "    %s\n", r.styles.Label.Render(strings.Join(facts, " · ")))
	}

	if len(c.MatchedSkills) > 0 {
		_, _ = fmt.Fprintf(r.out, "    %s %s\n",
			r.styles.Label.Render("Skills:"),
			r.styles.Skill.Render(strings.Join(c.MatchedSkills, ", ")))
	}
	for _, ev := range c.Evidence {
		_, _ = fmt.Fprintf(r.out, "    %s %s\n",
			r.styles.Dim.Render("·"),
			r.styles.Dim.Render(truncate(collapseWhitespace(ev.ChunkText), evidenceDisplayLimit)))
	}
	_, _ = fmt.Fprintln(r.out)
}

func (r *ResultsRenderer) renderMission(spec *agent.MissionSpec) {
	var parts []string
	if len(spec.MustHave) > 0 {
		parts = append(parts, "must: "+strings.Join(spec.MustHave, ", "))
	}
	if len(spec.NiceToHave) > 0 {
		parts = append(parts, "nice: "+strings.Join(spec.NiceToHave, ", "))
	}
	if spec.MinYears != nil {
		parts = append(parts, fmt.Sprintf("%d+ yrs", *spec.MinYears))
	}
	if spec.Location != nil {
		parts = append(parts, *spec.Location)
	}
	if len(parts) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.out, "%s %s\n\n",
		r.styles.Label.Render("Mission:"),
		strings.Join(parts, " | "))
}

func (r *ResultsRenderer) renderRefinements(refinements []string) {
	if len(refinements) == 0 {
		return
	}
	_, _ = fmt.Fprintln(r.out, r.styles.Label.Render("Suggestions:"))
	for _, s := range refinements {
		_, _ = fmt.Fprintf(r.out, "  - %s\n", s)
	}
}

func formatLocation(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case city != "":
		return city
	default:
		return country
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
