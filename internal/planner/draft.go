package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harborline/wayplan/internal/places"
	"github.com/harborline/wayplan/internal/weather"
)

// DraftPlan is the model's raw itinerary, decoded but not yet trusted.
// Drafts flow one way: DraftPlan -> EnrichedDraft -> Plan.
type DraftPlan struct {
	Description   string     `json:"description"`
	TotalDuration string     `json:"total_duration"`
	Days          []DraftDay `json:"days"`
}

// DraftDay is one day as the model proposed it.
type DraftDay struct {
	DayNumber int         `json:"day_number"`
	Date      string      `json:"date"`
	Summary   string      `json:"summary"`
	Tasks     []DraftTask `json:"tasks"`
}

// DraftTask is one task as the model proposed it. Status is free-form here
// and normalized during assembly.
type DraftTask struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	EstimatedDuration string `json:"estimated_duration"`
	Status            string `json:"status"`
}

// EnrichedTask is a draft task plus its venue grounding.
type EnrichedTask struct {
	DraftTask
	ExternalInfo *places.Candidate
}

// EnrichedDay is a draft day plus its weather snapshot and grounded tasks.
type EnrichedDay struct {
	DayNumber int
	Date      string
	Summary   string
	Tasks     []EnrichedTask
	Weather   *weather.Snapshot
}

// EnrichedDraft is the enricher's output, ready for assembly.
type EnrichedDraft struct {
	Description string
	Days        []EnrichedDay
}

// ParseDraftPlan decodes model output into a DraftPlan. It tolerates
// markdown code fences around the JSON but nothing else.
func ParseDraftPlan(raw string) (*DraftPlan, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, errors.New("empty model output")
	}
	var draft DraftPlan
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

// validateDraft checks the structural contract the synthesizer promises
// downstream: the requested day count, a summary and at least one titled
// task per day. Defects are reported together so a repair prompt can name
// them all.
func validateDraft(draft *DraftPlan, wantDays int) error {
	var problems []string
	if len(draft.Days) == 0 {
		problems = append(problems, "no days")
	} else if wantDays > 0 && len(draft.Days) != wantDays {
		problems = append(problems, fmt.Sprintf("expected %d days, got %d", wantDays, len(draft.Days)))
	}
	for i, day := range draft.Days {
		n := i + 1
		if strings.TrimSpace(day.Summary) == "" {
			problems = append(problems, fmt.Sprintf("day %d: missing summary", n))
		}
		if len(day.Tasks) == 0 {
			problems = append(problems, fmt.Sprintf("day %d: no tasks", n))
		}
		for _, task := range day.Tasks {
			if strings.TrimSpace(task.Title) == "" {
				problems = append(problems, fmt.Sprintf("day %d: task with empty title", n))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("draft structure: %s", strings.Join(problems, "; "))
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims whitespace.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	rest := s[start+3:]
	rest = strings.TrimPrefix(rest, "json")
	rest = strings.TrimPrefix(rest, "JSON")
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
