package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/harborline/wayplan/internal/audit"
	"github.com/harborline/wayplan/internal/genai"
	"github.com/harborline/wayplan/internal/places"
	"github.com/harborline/wayplan/internal/weather"
)

// State identifies where a generation run is in its lifecycle.
type State int

const (
	StateCreated State = iota
	StateAnalyzing
	StateSynthesizing
	StateEnriching
	StateAssembling
	StateCompleted
	StateFailed
)

func (s State) String() string {
	names := [...]string{
		"created",
		"analyzing",
		"synthesizing",
		"enriching",
		"assembling",
		"completed",
		"failed",
	}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Orchestrator is the single public entry point for plan generation.
type Orchestrator interface {
	// GeneratePlan turns rawGoal into a validated Plan. tripID keys the
	// audit trail for the run. The returned error is always a *Failure.
	GeneratePlan(ctx context.Context, rawGoal, tripID string) (*Plan, error)
}

// Compile-time interface checks.
var _ Orchestrator = (*Pipeline)(nil)

// Pipeline sequences analysis, synthesis, enrichment, and assembly for one
// goal per call. Instances are safe for concurrent use: per-request state
// lives on the stack and the audit sink serializes its own appends.
type Pipeline struct {
	analyzer    *Analyzer
	synthesizer *Synthesizer
	enricher    *Enricher
	assembler   *Assembler
	weather     weather.Provider
	sink        audit.Sink
	progress    *ProgressReporter
	cfg         Config
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) PipelineOption {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithAuditSink sets the sink receiving the trip audit trail. Without one,
// the trail is discarded.
func WithAuditSink(sink audit.Sink) PipelineOption {
	return func(p *Pipeline) { p.sink = sink }
}

// WithProgress sets the reporter receiving live state transitions.
func WithProgress(reporter *ProgressReporter) PipelineOption {
	return func(p *Pipeline) { p.progress = reporter }
}

// NewPipeline wires the four stages around the given collaborators. The
// weather and places providers may be nil; enrichment then degrades.
func NewPipeline(model genai.Model, weatherProvider weather.Provider, placesProvider places.Provider, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		weather: weatherProvider,
		cfg:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.analyzer = NewAnalyzer(model, p.cfg)
	p.synthesizer = NewSynthesizer(model, p.cfg)
	p.enricher = NewEnricher(weatherProvider, placesProvider, p.cfg)
	p.assembler = NewAssembler(p.cfg)
	return p
}

// GeneratePlan runs the state machine Created -> Analyzing -> Synthesizing
// -> Enriching -> Assembling -> Completed, with Failed terminal from any
// non-terminal state. Enrichment degrades instead of failing; every other
// stage error surfaces as a *Failure and no partial Plan is ever returned.
func (p *Pipeline) GeneratePlan(ctx context.Context, rawGoal, tripID string) (*Plan, error) {
	trail := audit.NewTrail(p.sink, tripID)
	trail.Step("pipeline", map[string]any{"raw_goal": rawGoal})
	started := time.Now()

	p.emit(StateAnalyzing, ProgressWorking, "")
	goal, err := p.analyzer.Analyze(ctx, trail, rawGoal)
	if err != nil {
		return nil, p.fail(trail, StateAnalyzing, started, err)
	}
	p.emit(StateAnalyzing, ProgressComplete, goal.Destination)

	hints := p.prefetchForecast(ctx, trail, goal)

	p.emit(StateSynthesizing, ProgressWorking, "")
	draft, err := p.synthesizer.Synthesize(ctx, trail, goal, hints)
	if err != nil {
		return nil, p.fail(trail, StateSynthesizing, started, err)
	}
	p.emit(StateSynthesizing, ProgressComplete, "")

	p.emit(StateEnriching, ProgressWorking, "")
	trail.Step("enrich", map[string]any{"days": len(draft.Days)})
	enrichStarted := time.Now()
	enriched, err := p.enricher.Enrich(ctx, trail, goal.Destination, draft, hintsByDate(hints))
	if err != nil {
		trail.Failure("enrich", time.Since(enrichStarted), map[string]any{"error": err.Error()})
		return nil, p.fail(trail, StateEnriching, started, err)
	}
	trail.Success("enrich", time.Since(enrichStarted), map[string]any{"days": len(enriched.Days)})
	p.emit(StateEnriching, ProgressComplete, "")

	p.emit(StateAssembling, ProgressWorking, "")
	trail.Step("assemble", nil)
	assembleStarted := time.Now()
	plan, err := p.assembler.Assemble(goal, enriched)
	if err != nil {
		trail.Failure("assemble", time.Since(assembleStarted), map[string]any{"error": err.Error()})
		return nil, p.fail(trail, StateAssembling, started, err)
	}
	trail.Success("assemble", time.Since(assembleStarted), map[string]any{
		"days":  len(plan.Days),
		"tasks": plan.TaskCount(),
	})
	p.emit(StateAssembling, ProgressComplete, "")

	trail.Finalize(true, time.Since(started), map[string]any{
		"summary": fmt.Sprintf("%d days, %d tasks", len(plan.Days), plan.TaskCount()),
	})
	p.emit(StateCompleted, ProgressComplete, "")
	return plan, nil
}

// fail converts a stage error into the external Failure, finalizes the
// trail, and reports the terminal state.
func (p *Pipeline) fail(trail *audit.Trail, state State, started time.Time, err error) *Failure {
	f := failureFrom(err)
	p.emit(StateFailed, ProgressFailed, fmt.Sprintf("%s: %s", state, f.Message))
	trail.Finalize(false, time.Since(started), map[string]any{
		"state":        state.String(),
		"failure_type": string(f.Type),
		"summary":      f.Message,
	})
	return f
}

// prefetchForecast fetches the whole trip range once so synthesis can hint
// the model and enrichment can reuse the snapshots. Failure is tolerated:
// the pipeline proceeds without hints.
func (p *Pipeline) prefetchForecast(ctx context.Context, trail *audit.Trail, goal StructuredGoal) []weather.Snapshot {
	if p.weather == nil {
		return nil
	}
	start, err := time.Parse(weather.DateFormat, goal.StartDate)
	if err != nil {
		return nil
	}
	end := start.AddDate(0, 0, goal.DurationDays-1)

	callCtx := ctx
	if p.cfg.EnrichTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.cfg.EnrichTimeout)
		defer cancel()
	}
	started := time.Now()

	snaps, err := p.weather.Forecast(callCtx, goal.Destination, start, end)
	if err != nil {
		trail.Failure("weather.prefetch", time.Since(started), map[string]any{"error": err.Error()})
		return nil
	}
	trail.Success("weather.prefetch", time.Since(started), map[string]any{"snapshots": len(snaps)})
	return snaps
}

func hintsByDate(snaps []weather.Snapshot) map[string]*weather.Snapshot {
	if len(snaps) == 0 {
		return nil
	}
	m := make(map[string]*weather.Snapshot, len(snaps))
	for i := range snaps {
		m[snaps[i].Date] = &snaps[i]
	}
	return m
}

func (p *Pipeline) emit(state State, status ProgressStatus, message string) {
	if p.progress == nil {
		return
	}
	p.progress.Emit(ProgressEvent{State: state, Status: status, Message: message})
}
