package planner

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/harborline/wayplan/internal/audit"
	"github.com/harborline/wayplan/internal/genai"
	"github.com/harborline/wayplan/internal/weather"
)

// StructuredGoal is the analyzer's output: the trip parameters extracted
// from free-form goal text.
type StructuredGoal struct {
	RawGoal      string   `json:"raw_goal"`
	Destination  string   `json:"destination"`
	DurationDays int      `json:"duration_days"`
	StartDate    string   `json:"start_date"`
	Activities   []string `json:"activities,omitempty"`
	Preferences  []string `json:"preferences,omitempty"`
}

// Analyzer turns free-form goal text into a StructuredGoal. It asks the
// model first and falls back to deterministic extraction whenever the model
// call fails or its output is unusable, so a model outage degrades analysis
// instead of failing it.
type Analyzer struct {
	model genai.Model
	cfg   Config
	now   func() time.Time
}

// NewAnalyzer creates an Analyzer backed by model. A nil model skips
// straight to deterministic extraction.
func NewAnalyzer(model genai.Model, cfg Config) *Analyzer {
	return &Analyzer{model: model, cfg: cfg, now: time.Now}
}

// Analyze extracts trip parameters from rawGoal. It fails with
// *ExtractionError when no destination can be identified or the duration
// falls outside 1..MaxDurationDays.
func (a *Analyzer) Analyze(ctx context.Context, trail *audit.Trail, rawGoal string) (StructuredGoal, error) {
	goalText := strings.TrimSpace(rawGoal)
	if goalText == "" {
		return StructuredGoal{}, &ExtractionError{Goal: rawGoal, Reason: "empty goal"}
	}

	trail.Step("analyze", map[string]any{"raw_goal": goalText})
	started := time.Now()

	goal := a.modelExtract(ctx, trail, goalText)
	fb := fallbackExtract(goalText, a.now())

	goal.RawGoal = goalText
	if goal.Destination == "" {
		goal.Destination = fb.Destination
	}
	if goal.DurationDays <= 0 {
		goal.DurationDays = fb.DurationDays
	}
	if goal.DurationDays <= 0 {
		goal.DurationDays = a.cfg.DefaultDurationDays
	}
	if len(goal.Activities) == 0 {
		goal.Activities = fb.Activities
	}
	if len(goal.Preferences) == 0 {
		goal.Preferences = fb.Preferences
	}
	if _, err := time.Parse(weather.DateFormat, goal.StartDate); err != nil {
		goal.StartDate = fb.StartDate
	}

	if goal.Destination == "" {
		trail.Failure("analyze", time.Since(started), map[string]any{"reason": "no identifiable destination"})
		return StructuredGoal{}, &ExtractionError{Goal: goalText, Reason: "no identifiable destination"}
	}
	if goal.DurationDays < 1 || goal.DurationDays > a.cfg.MaxDurationDays {
		reason := "duration " + strconv.Itoa(goal.DurationDays) + " outside 1-" + strconv.Itoa(a.cfg.MaxDurationDays) + " days"
		trail.Failure("analyze", time.Since(started), map[string]any{"reason": reason})
		return StructuredGoal{}, &ExtractionError{Goal: goalText, Reason: reason}
	}

	trail.Success("analyze", time.Since(started), map[string]any{
		"destination":   goal.Destination,
		"duration_days": goal.DurationDays,
		"start_date":    goal.StartDate,
		"activities":    goal.Activities,
	})
	return goal, nil
}

// modelExtract asks the model for structured parameters. Any failure, from
// transport to undecodable output, returns the zero value so the caller
// falls back.
func (a *Analyzer) modelExtract(ctx context.Context, trail *audit.Trail, goalText string) StructuredGoal {
	if a.model == nil {
		return StructuredGoal{}
	}

	prompt := extractionPrompt(goalText)
	trail.Step("analyze.model", map[string]any{"prompt": prompt})
	started := time.Now()

	callCtx := ctx
	if a.cfg.ModelTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.cfg.ModelTimeout)
		defer cancel()
	}

	raw, err := a.model.Complete(callCtx, prompt)
	if err != nil {
		log.Printf("WARNING: planner: goal extraction model call failed, using fallback: %v", err)
		trail.Failure("analyze.model", time.Since(started), map[string]any{"error": err.Error()})
		return StructuredGoal{}
	}

	var goal StructuredGoal
	if err := json.Unmarshal([]byte(stripFences(raw)), &goal); err != nil {
		log.Printf("WARNING: planner: goal extraction output undecodable, using fallback: %v", err)
		trail.Failure("analyze.model", time.Since(started), map[string]any{"error": err.Error(), "output": raw})
		return StructuredGoal{}
	}

	trail.Success("analyze.model", time.Since(started), map[string]any{"output": raw})
	return goal
}

// ---------------------------------------------------------------------------
// Deterministic fallback extraction
// ---------------------------------------------------------------------------

var (
	explicitDaysRe  = regexp.MustCompile(`\b(\d+)[-\s]?days?\b`)
	explicitWeeksRe = regexp.MustCompile(`\b(\d+)[-\s]?weeks?\b`)
)

var activityKeywords = []string{
	"cultural", "culture", "heritage", "history", "historical",
	"food", "culinary", "street food",
	"adventure", "trekking", "hiking",
	"shopping", "nightlife",
	"beach", "nature", "wildlife",
	"sightseeing", "temples", "museums", "photography", "relaxation",
}

var preferenceKeywords = []string{
	"vegetarian", "vegan", "halal", "kosher",
	"budget", "luxury",
	"family", "solo", "romantic", "accessible",
}

// fallbackExtract derives trip parameters from the text alone. DurationDays
// is zero when the text states none.
func fallbackExtract(goalText string, now time.Time) StructuredGoal {
	return StructuredGoal{
		RawGoal:      goalText,
		Destination:  extractDestination(goalText),
		DurationDays: extractDuration(goalText),
		StartDate:    inferStartDate(goalText, now).Format(weather.DateFormat),
		Activities:   matchKeywords(goalText, activityKeywords),
		Preferences:  matchKeywords(goalText, preferenceKeywords),
	}
}

// extractDestination finds the capitalized word run after a travel
// preposition ("to Jaipur", "in New Delhi", "visit Rome").
func extractDestination(goalText string) string {
	words := strings.Fields(goalText)
	for i, w := range words {
		switch strings.ToLower(strings.Trim(w, ",.!?;:")) {
		case "to", "in", "at", "visit", "visiting", "explore", "exploring":
			if i+1 < len(words) {
				if dest := capitalizedRun(words[i+1:]); dest != "" {
					return dest
				}
			}
		}
	}
	return ""
}

// dateWords are capitalized words that name dates, not places.
var dateWords = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "oct": true, "nov": true, "dec": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// capitalizedRun joins leading capitalized words, stopping at the first
// lowercase word, date word, or trailing punctuation.
func capitalizedRun(words []string) string {
	var parts []string
	for _, w := range words {
		t := strings.Trim(w, ",.!?;:")
		if t == "" {
			break
		}
		r := []rune(t)
		if !unicode.IsUpper(r[0]) || dateWords[strings.ToLower(t)] {
			break
		}
		parts = append(parts, t)
		if t != w {
			// Punctuation ends the run.
			break
		}
	}
	return strings.Join(parts, " ")
}

// extractDuration applies the duration cues the original prompt rules used:
// an explicit day or week count wins, then keyword heuristics. Zero means
// the text states no duration. Relative-date phrases ("in 2 weeks") are
// stripped first so they are not misread as trip lengths.
func extractDuration(goalText string) int {
	text := strings.ToLower(goalText)
	text = inDaysRe.ReplaceAllString(text, " ")
	text = inWeeksRe.ReplaceAllString(text, " ")

	if m := explicitDaysRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := explicitWeeksRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return 7 * n
	}

	switch {
	case strings.Contains(text, "weekend"):
		return 3
	case strings.Contains(text, "week"):
		return 7
	case strings.Contains(text, "quick"), strings.Contains(text, "short"):
		return 2
	case strings.Contains(text, "vacation"), strings.Contains(text, "holiday"):
		return 7
	case strings.Contains(text, "long"), strings.Contains(text, "extended"):
		return 10
	}
	return 0
}

func matchKeywords(goalText string, keywords []string) []string {
	text := strings.ToLower(goalText)
	var out []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}
