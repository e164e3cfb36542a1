package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harborline/wayplan/internal/audit"
	"github.com/harborline/wayplan/internal/places"
	"github.com/harborline/wayplan/internal/weather"
)

// Enricher attaches weather snapshots and venue grounding to draft days.
// Enrichment is best-effort: a provider failure degrades that aspect of the
// day and is recorded on the trail, it never fails the pipeline.
type Enricher struct {
	weather weather.Provider
	places  places.Provider
	cfg     Config
}

// NewEnricher creates an Enricher. Either provider may be nil, which
// disables that aspect of enrichment.
func NewEnricher(weatherProvider weather.Provider, placesProvider places.Provider, cfg Config) *Enricher {
	return &Enricher{weather: weatherProvider, places: placesProvider, cfg: cfg}
}

// Enrich fans the draft's days out with bounded concurrency. hints maps a
// date (YYYY-MM-DD) to its pre-fetched forecast snapshot; days without a
// hint query the weather provider directly. The only error Enrich returns
// is context cancellation.
func (e *Enricher) Enrich(ctx context.Context, trail *audit.Trail, destination string, draft *DraftPlan, hints map[string]*weather.Snapshot) (*EnrichedDraft, error) {
	enriched := &EnrichedDraft{
		Description: draft.Description,
		Days:        make([]EnrichedDay, len(draft.Days)),
	}

	limit := e.cfg.MaxConcurrentDays
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, day := range draft.Days {
		g.Go(func() error {
			enriched.Days[i] = e.EnrichDay(gctx, trail, destination, day, hints[day.Date])
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("planner: enrichment canceled: %w", err)
	}
	return enriched, nil
}

// EnrichDay enriches a single day. The weather attachment and the venue
// groundings run concurrently; the day is done when all of them are. When
// the attached snapshot crosses the rain threshold, an advisory task is
// injected at the top of the day.
func (e *Enricher) EnrichDay(ctx context.Context, trail *audit.Trail, destination string, day DraftDay, hint *weather.Snapshot) EnrichedDay {
	out := EnrichedDay{
		DayNumber: day.DayNumber,
		Date:      day.Date,
		Summary:   day.Summary,
		Tasks:     make([]EnrichedTask, len(day.Tasks)),
	}
	for i, t := range day.Tasks {
		out.Tasks[i] = EnrichedTask{DraftTask: t}
	}

	var wg sync.WaitGroup
	var snap *weather.Snapshot

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap = e.dayWeather(ctx, trail, destination, day, hint)
	}()

	for i := range out.Tasks {
		category := e.groundedCategory(out.Tasks[i].DraftTask)
		if category == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.groundTask(ctx, trail, destination, day.DayNumber, category, &out.Tasks[i])
		}()
	}
	wg.Wait()

	out.Weather = snap
	if snap != nil && snap.RainProbability >= e.cfg.RainAdvisoryThreshold {
		out.Tasks = append([]EnrichedTask{advisoryTask(snap)}, out.Tasks...)
	}
	return out
}

// dayWeather resolves the day's snapshot: the pre-fetched hint when there
// is one, otherwise a single-day provider query.
func (e *Enricher) dayWeather(ctx context.Context, trail *audit.Trail, destination string, day DraftDay, hint *weather.Snapshot) *weather.Snapshot {
	if hint != nil {
		return hint
	}
	if e.weather == nil {
		return nil
	}

	date, err := time.Parse(weather.DateFormat, day.Date)
	if err != nil {
		trail.Failure("enrich.weather", 0, map[string]any{
			"day":   day.DayNumber,
			"error": fmt.Sprintf("unparsable date %q", day.Date),
		})
		return nil
	}

	callCtx, cancel := e.lookupContext(ctx)
	defer cancel()
	started := time.Now()

	snaps, err := e.weather.Forecast(callCtx, destination, date, date)
	if err != nil {
		trail.Failure("enrich.weather", time.Since(started), map[string]any{
			"day":   day.DayNumber,
			"error": err.Error(),
		})
		return nil
	}
	for i := range snaps {
		if snaps[i].Date == day.Date {
			return &snaps[i]
		}
	}
	if len(snaps) > 0 {
		return &snaps[0]
	}
	return nil
}

// groundTask queries the place provider for the task's category and merges
// the best candidate into ExternalInfo. AI-authored title and description
// are never touched.
func (e *Enricher) groundTask(ctx context.Context, trail *audit.Trail, destination string, dayNumber int, category string, task *EnrichedTask) {
	if e.places == nil {
		return
	}

	callCtx, cancel := e.lookupContext(ctx)
	defer cancel()
	started := time.Now()

	candidates, err := e.places.Search(callCtx, destination, category)
	if err != nil {
		trail.Failure("enrich.places", time.Since(started), map[string]any{
			"day":   dayNumber,
			"task":  task.Title,
			"error": err.Error(),
		})
		return
	}
	if len(candidates) == 0 {
		return
	}
	best := candidates[0]
	task.ExternalInfo = &best
}

// groundedCategory returns the first configured category the task's text
// mentions, or "" when the task gets no venue grounding.
func (e *Enricher) groundedCategory(t DraftTask) string {
	text := strings.ToLower(t.Title + " " + t.Description)
	for _, category := range e.cfg.GroundedCategories {
		if strings.Contains(text, strings.ToLower(category)) {
			return category
		}
	}
	return ""
}

func (e *Enricher) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.EnrichTimeout > 0 {
		return context.WithTimeout(ctx, e.cfg.EnrichTimeout)
	}
	return context.WithCancel(ctx)
}

// advisoryTask builds the synthetic task injected when rain probability
// crosses the threshold. It carries a zero duration.
func advisoryTask(snap *weather.Snapshot) EnrichedTask {
	description := snap.Advisory
	if description == "" {
		description = fmt.Sprintf("High rain probability (%d%%): prioritize indoor activities or covered venues", snap.RainProbability)
	}
	return EnrichedTask{DraftTask: DraftTask{
		Title:             "Weather advisory: high rain probability",
		Description:       description,
		EstimatedDuration: "0 hours",
		Status:            string(TaskPending),
	}}
}
