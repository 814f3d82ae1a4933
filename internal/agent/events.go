// Package agent implements the agentic shortlist pipeline: a linear
// stage machine that turns a free-text recruiter query into a ranked,
// evidence-backed shortlist while streaming progress events.
package agent

import (
	"context"
	"time"
)

// EventType identifies a streamed pipeline event.
type EventType string

const (
	EventAgentStart    EventType = "agent_start"
	EventAgentThought  EventType = "agent_thought"
	EventToolCall      EventType = "tool_call"
	EventToolResult    EventType = "tool_result"
	EventStageComplete EventType = "stage_complete"
	EventMissionSpec   EventType = "mission_spec"
	EventResult        EventType = "result"
	EventError         EventType = "error"
	EventDone          EventType = "done"
)

// Stage names, in pipeline order.
const (
	StageJDUnderstanding = "jd_understanding"
	StageRetrieval       = "retrieval"
	StageFusion          = "fusion"
	StageEvidence        = "evidence_building"
	StageRanking         = "ranking"
	StageAssembly        = "assembly"
)

// StageOrder lists the pipeline stages in execution order.
var StageOrder = []string{
	StageJDUnderstanding,
	StageRetrieval,
	StageFusion,
	StageEvidence,
	StageRanking,
	StageAssembly,
}

// Event is one entry in the pipeline's totally ordered event stream.
// A consumer that replays the stream can reconstruct all UI state.
type Event struct {
	Type      EventType      `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Agent     string         `json:"agent,omitempty"`
	Message   string         `json:"message,omitempty"`
	Tool      string         `json:"tool,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	Summary   string         `json:"summary,omitempty"`
	Stage     string         `json:"stage,omitempty"`
	TimingMs  int64          `json:"timing_ms,omitempty"`
	Data      any            `json:"data,omitempty"`
}

// emitter serializes events onto a bounded channel. All sends happen
// from the single pipeline goroutine, which gives the stream its total
// order. The context is the consumer's lifetime, not the query
// deadline: once the consumer is gone sends are dropped, but a run
// that exceeds its own deadline can still deliver terminal events.
type emitter struct {
	ctx context.Context
	ch  chan Event
}

func newEmitter(ctx context.Context, buffer int) *emitter {
	if buffer <= 0 {
		buffer = 64
	}
	return &emitter{ctx: ctx, ch: make(chan Event, buffer)}
}

func (e *emitter) emit(ev Event) bool {
	if e.ctx.Err() != nil {
		return false
	}
	ev.Timestamp = time.Now().UTC()
	select {
	case e.ch <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}

func (e *emitter) agentStart(agent, message string) bool {
	return e.emit(Event{Type: EventAgentStart, Agent: agent, Message: message})
}

func (e *emitter) thought(agent, message string) bool {
	return e.emit(Event{Type: EventAgentThought, Agent: agent, Message: message})
}

func (e *emitter) toolCall(tool string, args map[string]any) bool {
	return e.emit(Event{Type: EventToolCall, Tool: tool, Args: args})
}

func (e *emitter) toolResult(tool string, elapsed time.Duration, summary string) bool {
	return e.emit(Event{Type: EventToolResult, Tool: tool, TimingMs: elapsed.Milliseconds(), Summary: summary})
}

func (e *emitter) stageComplete(stage string, elapsed time.Duration) bool {
	return e.emit(Event{Type: EventStageComplete, Stage: stage, TimingMs: elapsed.Milliseconds()})
}

func (e *emitter) close() {
	close(e.ch)
}
