package ui

import (
	"fmt"
	"io"

	"github.com/talentsift/talentsift/internal/agent"
)

// StreamRenderer prints a live trace of a shortlist pipeline run and
// captures the terminal result. It is driven by ranging over the
// pipeline's event channel, so output follows the stream's order.
type StreamRenderer struct {
	out     io.Writer
	styles  Styles
	verbose bool

	result *agent.Result
	runErr error
}

// NewStreamRenderer creates a stream renderer.
func NewStreamRenderer(cfg Config) *StreamRenderer {
	return &StreamRenderer{
		out:     cfg.Output,
		styles:  cfg.styles(),
		verbose: cfg.Verbose,
	}
}

// Consume drains the event channel, printing progress as it arrives.
// It returns the final result, or an error if the stream carried one.
func (r *StreamRenderer) Consume(events <-chan agent.Event) (*agent.Result, error) {
	for ev := range events {
		r.handle(ev)
	}
	if r.runErr != nil {
		return nil, r.runErr
	}
	if r.result == nil {
		return nil, fmt.Errorf("event stream ended without a result")
	}
	return r.result, nil
}

func (r *StreamRenderer) handle(ev agent.Event) {
	switch ev.Type {
	case agent.EventAgentStart:
		_, _ = fmt.Fprintf(r.out, "%s %s\n", r.styles.Stage.Render("»"), ev.Message)
	case agent.EventAgentThought:
		if r.verbose {
			_, _ = fmt.Fprintf(r.out, "  %s\n", r.styles.Dim.Render(ev.Message))
		}
	case agent.EventToolCall:
		if r.verbose {
			_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("tool:"), ev.Tool)
		}
	case agent.EventToolResult:
		if r.verbose && ev.Summary != "" {
			_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Dim.Render("→"), ev.Summary)
		}
	case agent.EventStageComplete:
		_, _ = fmt.Fprintf(r.out, "%s %s (%dms)\n",
			r.styles.Stage.Render("✓"), ev.Stage, ev.TimingMs)
	case agent.EventMissionSpec:
		// Rendered with the final shortlist, not inline.
	case agent.EventResult:
		if res, ok := ev.Data.(*agent.Result); ok {
			r.result = res
		}
	case agent.EventError:
		r.runErr = fmt.Errorf("%s", ev.Message)
		_, _ = fmt.Fprintf(r.out, "%s %s\n", r.styles.Error.Render("error:"), ev.Message)
	case agent.EventDone:
		_, _ = fmt.Fprintln(r.out)
	}
}
