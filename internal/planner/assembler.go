package planner

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Assembler turns an enriched draft into the canonical Plan. Validation
// collects every structural defect instead of stopping at the first, so a
// single failure names everything wrong with the draft.
type Assembler struct {
	cfg Config
}

// NewAssembler creates an Assembler.
func NewAssembler(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

var durationRe = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(hours?|hrs?|minutes?|mins?|days?)$`)

// Assemble validates day structure and task durations, normalizes statuses,
// and derives total_duration. The goal supplies the expected day count.
// Fails with *ValidationError; never returns a partially assembled Plan.
func (a *Assembler) Assemble(goal StructuredGoal, draft *EnrichedDraft) (*Plan, error) {
	var problems []string

	if len(draft.Days) == 0 {
		problems = append(problems, "plan has no days")
	} else if goal.DurationDays > 0 && len(draft.Days) != goal.DurationDays {
		problems = append(problems, fmt.Sprintf("expected %d days, got %d", goal.DurationDays, len(draft.Days)))
	}

	days := make([]Day, 0, len(draft.Days))
	for i, ed := range draft.Days {
		if ed.DayNumber != i+1 {
			problems = append(problems, fmt.Sprintf("day at position %d: day_number %d out of sequence", i+1, ed.DayNumber))
		}
		if len(ed.Tasks) == 0 {
			problems = append(problems, fmt.Sprintf("day %d: no tasks", ed.DayNumber))
		}

		tasks := make([]Task, 0, len(ed.Tasks))
		for _, et := range ed.Tasks {
			duration, ok := normalizeEstimatedDuration(et.EstimatedDuration)
			if !ok {
				problems = append(problems, fmt.Sprintf("day %d: task %q: unparsable estimated_duration %q",
					ed.DayNumber, et.Title, et.EstimatedDuration))
			}
			tasks = append(tasks, Task{
				Title:             strings.TrimSpace(et.Title),
				Description:       strings.TrimSpace(et.Description),
				EstimatedDuration: duration,
				Status:            normalizeTaskStatus(et.Status),
				ExternalInfo:      et.ExternalInfo,
			})
		}

		days = append(days, Day{
			DayNumber: ed.DayNumber,
			Date:      ed.Date,
			Summary:   strings.TrimSpace(ed.Summary),
			Tasks:     tasks,
			Weather:   ed.Weather,
		})
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return &Plan{
		Goal:          goal.RawGoal,
		Description:   draft.Description,
		TotalDuration: fmt.Sprintf("%d days", len(days)),
		Days:          days,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// normalizeEstimatedDuration canonicalizes model-supplied durations
// ("2 hrs" -> "2 hours", "full day" -> "1 day"). The bool reports whether
// the input was parseable at all.
func normalizeEstimatedDuration(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)

	switch strings.ToLower(trimmed) {
	case "full day", "all day", "entire day", "whole day":
		return "1 day", true
	case "half day", "half-day":
		return "4 hours", true
	}

	m := durationRe.FindStringSubmatch(trimmed)
	if m == nil {
		return "", false
	}
	value, unit := m[1], strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "hour"), strings.HasPrefix(unit, "hr"):
		unit = "hours"
	case strings.HasPrefix(unit, "min"):
		unit = "minutes"
	case strings.HasPrefix(unit, "day"):
		unit = "days"
	}
	if value == "1" {
		unit = strings.TrimSuffix(unit, "s")
	}
	return value + " " + unit, true
}
