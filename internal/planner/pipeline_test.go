package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/wayplan/internal/audit"
	"github.com/harborline/wayplan/internal/genai"
	"github.com/harborline/wayplan/internal/places"
	"github.com/harborline/wayplan/internal/weather"
)

// routedModel answers extraction prompts with extraction and every other
// prompt with draft, mimicking a well-behaved production model.
func routedModel(extraction, draft string) *mockModel {
	return &mockModel{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Extract the trip parameters") {
				return extraction, nil
			}
			return draft, nil
		},
	}
}

func rangeForecast(rainByDate map[string]int) *mockWeather {
	return &mockWeather{
		forecastFunc: func(ctx context.Context, location string, from, to time.Time) ([]weather.Snapshot, error) {
			var snaps []weather.Snapshot
			for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
				date := d.Format(weather.DateFormat)
				snap := *snapshotFor(date, rainByDate[date])
				snaps = append(snaps, snap)
			}
			return snaps, nil
		},
	}
}

func TestGeneratePlan_HappyPath(t *testing.T) {
	model := routedModel(
		`{"destination":"Jaipur","duration_days":3,"start_date":"2026-09-10","activities":["cultural highlights"]}`,
		validDraftJSON(t, 3),
	)
	w := rangeForecast(map[string]int{"2026-09-10": 10, "2026-09-11": 20, "2026-09-12": 30})
	p := &mockPlaces{
		searchFunc: func(ctx context.Context, location, query string) ([]places.Candidate, error) {
			return []places.Candidate{{Name: "Niros", Address: "MI Road, Jaipur", Category: query, Confidence: 0.8}}, nil
		},
	}
	sink := audit.NewMemorySink()

	pipe := NewPipeline(model, w, p, WithAuditSink(sink))
	plan, err := pipe.GeneratePlan(context.Background(), "Plan a 3-day trip to Jaipur with cultural highlights", "trip-happy")
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.Equal(t, "Plan a 3-day trip to Jaipur with cultural highlights", plan.Goal)
	assert.Equal(t, "3 days", plan.TotalDuration)
	require.Len(t, plan.Days, 3)

	for i, day := range plan.Days {
		assert.Equal(t, i+1, day.DayNumber)
		require.NotNil(t, day.Weather, "pre-fetched forecast must reach day %d", i+1)
		assert.NotEmpty(t, day.Tasks)
	}
	assert.Equal(t, "2026-09-10", plan.Days[0].Date)
	assert.Equal(t, "2026-09-12", plan.Days[2].Date)

	// The restaurant task carries grounding, the museum task does too.
	grounded := 0
	for _, day := range plan.Days {
		for _, task := range day.Tasks {
			if task.ExternalInfo != nil {
				grounded++
				assert.Equal(t, "Niros", task.ExternalInfo.Name)
			}
		}
	}
	assert.Greater(t, grounded, 0, "at least one task must be grounded")

	entries := sink.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "pipeline", entries[0].Step)
	assert.Equal(t, "trip-happy", entries[0].TripID)

	final := entries[len(entries)-1]
	assert.True(t, final.Final)
	assert.Equal(t, audit.StatusSuccess, final.Status)
	assert.Greater(t, final.Elapsed, time.Duration(0))
}

func TestGeneratePlan_BothProvidersFailing(t *testing.T) {
	model := routedModel(
		`{"destination":"Jaipur","duration_days":2,"start_date":"2026-09-10"}`,
		validDraftJSON(t, 2),
	)
	w := &mockWeather{
		forecastFunc: func(ctx context.Context, location string, from, to time.Time) ([]weather.Snapshot, error) {
			return nil, errors.New("openweathermap: unreachable")
		},
	}
	p := &mockPlaces{
		searchFunc: func(ctx context.Context, location, query string) ([]places.Candidate, error) {
			return nil, errors.New("serpapi: unreachable")
		},
	}
	sink := audit.NewMemorySink()

	pipe := NewPipeline(model, w, p, WithAuditSink(sink))
	plan, err := pipe.GeneratePlan(context.Background(), "Plan a 2-day trip to Jaipur", "trip-degraded")
	require.NoError(t, err, "provider failures must degrade, not fail")
	require.Len(t, plan.Days, 2)

	for _, day := range plan.Days {
		assert.Nil(t, day.Weather)
		for _, task := range day.Tasks {
			assert.Nil(t, task.ExternalInfo)
		}
	}

	assert.NotEmpty(t, sink.ByStep("weather.prefetch"), "degradations must be auditable")
	final := sink.Entries()[len(sink.Entries())-1]
	assert.True(t, final.Final)
	assert.Equal(t, audit.StatusSuccess, final.Status)
}

func TestGeneratePlan_QuotaFailureCarriesRetryAfter(t *testing.T) {
	model := &mockModel{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", &genai.Error{
				Kind:       genai.KindQuotaExceeded,
				RetryAfter: 18 * time.Second,
				Status:     429,
				Message:    "quota exhausted",
			}
		},
	}
	sink := audit.NewMemorySink()

	pipe := NewPipeline(model, nil, nil, WithAuditSink(sink))
	plan, err := pipe.GeneratePlan(context.Background(), "Plan a 3-day trip to Jaipur", "trip-quota")
	require.Error(t, err)
	assert.Nil(t, plan, "no partial plan on failure")

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureQuota, f.Type)
	assert.True(t, f.Retryable)
	assert.Equal(t, 18, f.RetryAfter)

	final := sink.Entries()[len(sink.Entries())-1]
	require.True(t, final.Final)
	assert.Equal(t, audit.StatusFailure, final.Status)
	assert.Equal(t, string(FailureQuota), final.Payload["failure_type"])
}

func TestGeneratePlan_ExtractionFailure(t *testing.T) {
	pipe := NewPipeline(nil, nil, nil)
	plan, err := pipe.GeneratePlan(context.Background(), "what should I even do", "trip-unclear")
	require.Error(t, err)
	assert.Nil(t, plan)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureExtraction, f.Type)
	assert.False(t, f.Retryable)
}

func TestGeneratePlan_NoModelIsInternalFailure(t *testing.T) {
	pipe := NewPipeline(nil, nil, nil)
	plan, err := pipe.GeneratePlan(context.Background(), "Plan a 3-day trip to Jaipur", "trip-nomodel")
	require.Error(t, err)
	assert.Nil(t, plan)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureInternal, f.Type)
	assert.Contains(t, f.Detail, "no generative model")
}

func TestGeneratePlan_RainAdvisoryReachesFinalPlan(t *testing.T) {
	model := routedModel(
		`{"destination":"Hyderabad","duration_days":2,"start_date":"2026-09-10","preferences":["vegetarian"]}`,
		validDraftJSON(t, 2),
	)
	w := rangeForecast(map[string]int{"2026-09-10": 10, "2026-09-11": 100})

	pipe := NewPipeline(model, w, nil)
	plan, err := pipe.GeneratePlan(context.Background(), "Plan a 2-day vegetarian food tour in Hyderabad", "trip-rain")
	require.NoError(t, err)
	require.Len(t, plan.Days, 2)

	dayOne, dayTwo := plan.Days[0], plan.Days[1]

	require.NotNil(t, dayTwo.Weather)
	assert.Equal(t, 100, dayTwo.Weather.RainProbability)
	require.NotEmpty(t, dayTwo.Tasks)
	assert.Contains(t, dayTwo.Tasks[0].Title, "Weather advisory")
	assert.Equal(t, "0 hours", dayTwo.Tasks[0].EstimatedDuration)

	for _, task := range dayOne.Tasks {
		assert.NotContains(t, task.Title, "Weather advisory")
	}
}

func TestGeneratePlan_EmitsProgress(t *testing.T) {
	model := routedModel(
		`{"destination":"Jaipur","duration_days":2,"start_date":"2026-09-10"}`,
		validDraftJSON(t, 2),
	)
	reporter := NewProgressReporter()

	pipe := NewPipeline(model, nil, nil, WithProgress(reporter))
	_, err := pipe.GeneratePlan(context.Background(), "Plan a 2-day trip to Jaipur", "trip-progress")
	require.NoError(t, err)
	reporter.Close()

	seen := make(map[State]map[ProgressStatus]bool)
	for ev := range reporter.Subscribe() {
		if seen[ev.State] == nil {
			seen[ev.State] = make(map[ProgressStatus]bool)
		}
		seen[ev.State][ev.Status] = true
	}

	for _, state := range []State{StateAnalyzing, StateSynthesizing, StateEnriching, StateAssembling} {
		require.NotNil(t, seen[state], "no events for state %s", state)
		assert.True(t, seen[state][ProgressWorking], "missing working event for %s", state)
		assert.True(t, seen[state][ProgressComplete], "missing complete event for %s", state)
	}
	assert.True(t, seen[StateCompleted][ProgressComplete])
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "created", StateCreated.String())
	assert.Equal(t, "analyzing", StateAnalyzing.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(99).String())
}
