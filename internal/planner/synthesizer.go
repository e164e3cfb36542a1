package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harborline/wayplan/internal/audit"
	"github.com/harborline/wayplan/internal/genai"
	"github.com/harborline/wayplan/internal/weather"
)

// errNoModel reports a pipeline constructed without a generative model.
var errNoModel = errors.New("planner: no generative model configured")

// Synthesizer drives the generative model to produce a structurally valid
// DraftPlan for a goal.
type Synthesizer struct {
	model genai.Model
	cfg   Config
}

// NewSynthesizer creates a Synthesizer backed by model.
func NewSynthesizer(model genai.Model, cfg Config) *Synthesizer {
	return &Synthesizer{model: model, cfg: cfg}
}

// Synthesize prompts the model for an itinerary and decodes it. Malformed
// output gets up to cfg.RepairAttempts repair re-prompts naming the defect.
// A wrong day count is rejected like any other defect, never truncated or
// padded. Fails with *GenerationError.
func (s *Synthesizer) Synthesize(ctx context.Context, trail *audit.Trail, goal StructuredGoal, hints []weather.Snapshot) (*DraftPlan, error) {
	if s.model == nil {
		trail.Failure("synthesize", 0, map[string]any{"error": errNoModel.Error()})
		return nil, errNoModel
	}

	prompt := draftPrompt(goal, hints)
	trail.Step("synthesize", map[string]any{
		"destination":   goal.Destination,
		"duration_days": goal.DurationDays,
	})
	started := time.Now()

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, s.failSynthesis(trail, started, generationErrorFrom(err))
	}

	draft, derr := decodeDraft(raw, goal.DurationDays)
	for attempt := 1; derr != nil && attempt <= s.cfg.RepairAttempts; attempt++ {
		trail.Step("synthesize.repair", map[string]any{
			"attempt": attempt,
			"defect":  derr.Error(),
		})
		raw, err = s.complete(ctx, repairPrompt(prompt, raw, derr))
		if err != nil {
			return nil, s.failSynthesis(trail, started, generationErrorFrom(err))
		}
		draft, derr = decodeDraft(raw, goal.DurationDays)
	}
	if derr != nil {
		gerr := &GenerationError{
			Kind:    GenMalformedOutput,
			Message: fmt.Sprintf("draft unusable after %d repair attempt(s)", s.cfg.RepairAttempts),
			Err:     derr,
		}
		return nil, s.failSynthesis(trail, started, gerr)
	}

	normalizeDraft(draft, goal)
	trail.Success("synthesize", time.Since(started), map[string]any{
		"days":  len(draft.Days),
		"tasks": draftTaskCount(draft),
	})
	return draft, nil
}

func (s *Synthesizer) failSynthesis(trail *audit.Trail, started time.Time, gerr *GenerationError) error {
	trail.Failure("synthesize", time.Since(started), map[string]any{
		"kind":  gerr.Kind.String(),
		"error": gerr.Error(),
	})
	return gerr
}

func (s *Synthesizer) complete(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if s.cfg.ModelTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.ModelTimeout)
		defer cancel()
	}
	return s.model.Complete(callCtx, prompt)
}

// decodeDraft parses and structurally validates model output in one step,
// so a single defect string can drive the repair prompt.
func decodeDraft(raw string, wantDays int) (*DraftPlan, error) {
	draft, err := ParseDraftPlan(raw)
	if err != nil {
		return nil, err
	}
	if err := validateDraft(draft, wantDays); err != nil {
		return nil, err
	}
	return draft, nil
}

// normalizeDraft renumbers days from 1 and pins each day's date to the
// goal's start date. Model-supplied dates are unreliable; the analyzer's
// start date is authoritative.
func normalizeDraft(draft *DraftPlan, goal StructuredGoal) {
	start, err := time.Parse(weather.DateFormat, goal.StartDate)
	for i := range draft.Days {
		draft.Days[i].DayNumber = i + 1
		if err == nil {
			draft.Days[i].Date = start.AddDate(0, 0, i).Format(weather.DateFormat)
		}
	}
	if draft.Description == "" {
		draft.Description = fmt.Sprintf("A %d-day trip to %s", len(draft.Days), goal.Destination)
	}
}

func draftTaskCount(draft *DraftPlan) int {
	n := 0
	for _, d := range draft.Days {
		n += len(d.Tasks)
	}
	return n
}
