package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/wayplan/internal/audit"
	"github.com/harborline/wayplan/internal/genai"
)

// mockModel implements genai.Model with a configurable function.
type mockModel struct {
	completeFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockModel) Complete(ctx context.Context, prompt string) (string, error) {
	return m.completeFunc(ctx, prompt)
}

// validDraftJSON builds a parseable model draft with n days. Task titles
// mention grounded categories so enrichment tests have something to ground.
func validDraftJSON(t *testing.T, n int) string {
	t.Helper()
	draft := DraftPlan{
		Description:   "test trip",
		TotalDuration: fmt.Sprintf("%d days", n),
	}
	for i := 1; i <= n; i++ {
		draft.Days = append(draft.Days, DraftDay{
			DayNumber: i,
			Summary:   fmt.Sprintf("Day %d highlights", i),
			Tasks: []DraftTask{
				{Title: "Visit the city museum", Description: "Morning visit", EstimatedDuration: "2 hours", Status: "pending"},
				{Title: "Dinner at a local restaurant", Description: "Evening meal", EstimatedDuration: "1 hour", Status: ""},
			},
		})
	}
	raw, err := json.Marshal(draft)
	require.NoError(t, err)
	return string(raw)
}

func testGoal(days int) StructuredGoal {
	return StructuredGoal{
		RawGoal:      fmt.Sprintf("Plan a %d-day trip to Jaipur", days),
		Destination:  "Jaipur",
		DurationDays: days,
		StartDate:    "2026-09-10",
		Activities:   []string{"cultural"},
	}
}

func TestSynthesize_ValidFirstTry(t *testing.T) {
	var calls atomic.Int32
	model := &mockModel{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			calls.Add(1)
			return validDraftJSON(t, 3), nil
		},
	}
	s := NewSynthesizer(model, DefaultConfig())

	draft, err := s.Synthesize(context.Background(), nil, testGoal(3), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	require.Len(t, draft.Days, 3)
	for i, day := range draft.Days {
		assert.Equal(t, i+1, day.DayNumber)
	}
	// Dates are pinned to the goal's start date regardless of model output.
	assert.Equal(t, "2026-09-10", draft.Days[0].Date)
	assert.Equal(t, "2026-09-11", draft.Days[1].Date)
	assert.Equal(t, "2026-09-12", draft.Days[2].Date)
}

func TestSynthesize_RepairsMalformedOutputOnce(t *testing.T) {
	var calls atomic.Int32
	model := &mockModel{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			if calls.Add(1) == 1 {
				return "sorry, I had trouble with that", nil
			}
			// The repair prompt must name the defect.
			assert.Contains(t, prompt, "could not be used")
			return validDraftJSON(t, 3), nil
		},
	}
	sink := audit.NewMemorySink()
	trail := audit.NewTrail(sink, "trip-repair")
	s := NewSynthesizer(model, DefaultConfig())

	draft, err := s.Synthesize(context.Background(), trail, testGoal(3), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, draft.Days, 3)

	repairs := sink.ByStep("synthesize.repair")
	require.Len(t, repairs, 1, "exactly one repair must be logged")
	assert.Equal(t, audit.StatusStep, repairs[0].Status)
}

func TestSynthesize_MalformedAfterRepairFails(t *testing.T) {
	var calls atomic.Int32
	model := &mockModel{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			calls.Add(1)
			return "still not json", nil
		},
	}
	s := NewSynthesizer(model, DefaultConfig())

	_, err := s.Synthesize(context.Background(), nil, testGoal(3), nil)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load(), "one attempt plus one repair")

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, GenMalformedOutput, gerr.Kind)
}

func TestSynthesize_WrongDayCountRejected(t *testing.T) {
	model := &mockModel{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return validDraftJSON(t, 2), nil
		},
	}
	s := NewSynthesizer(model, DefaultConfig())

	_, err := s.Synthesize(context.Background(), nil, testGoal(3), nil)
	require.Error(t, err)

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, GenMalformedOutput, gerr.Kind)
	assert.Contains(t, gerr.Err.Error(), "expected 3 days, got 2")
}

func TestSynthesize_QuotaCarriesRetryAfter(t *testing.T) {
	var calls atomic.Int32
	model := &mockModel{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			calls.Add(1)
			return "", &genai.Error{
				Kind:       genai.KindQuotaExceeded,
				RetryAfter: 18 * time.Second,
				Status:     429,
				Message:    "quota exhausted",
			}
		},
	}
	s := NewSynthesizer(model, DefaultConfig())

	_, err := s.Synthesize(context.Background(), nil, testGoal(3), nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "quota failures are not repaired or retried")

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, GenQuotaExceeded, gerr.Kind)
	assert.Equal(t, 18*time.Second, gerr.RetryAfter)
}

func TestSynthesize_TimeoutKindMapped(t *testing.T) {
	model := &mockModel{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", &genai.Error{Kind: genai.KindTimeout, Message: "deadline exceeded"}
		},
	}
	s := NewSynthesizer(model, DefaultConfig())

	_, err := s.Synthesize(context.Background(), nil, testGoal(2), nil)
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, GenModelTimeout, gerr.Kind)
}

func TestNormalizeDraft_FillsDescription(t *testing.T) {
	draft := &DraftPlan{Days: []DraftDay{{Summary: "x", Tasks: []DraftTask{{Title: "y"}}}}}
	normalizeDraft(draft, testGoal(1))
	assert.Contains(t, draft.Description, "Jaipur")
}
