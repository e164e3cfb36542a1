package planner

import (
	"fmt"
	"strings"

	"github.com/harborline/wayplan/internal/weather"
)

const extractionSchema = `{
  "destination": "city or region name",
  "duration_days": 0,
  "start_date": "YYYY-MM-DD",
  "activities": ["..."],
  "preferences": ["..."]
}`

const draftSchema = `{
  "description": "one-paragraph trip overview",
  "total_duration": "N days",
  "days": [
    {
      "day_number": 1,
      "date": "YYYY-MM-DD",
      "summary": "what this day is about",
      "tasks": [
        {
          "title": "...",
          "description": "...",
          "estimated_duration": "2 hours",
          "status": "pending"
        }
      ]
    }
  ]
}`

// extractionPrompt asks the model for the structured trip parameters.
func extractionPrompt(goalText string) string {
	var b strings.Builder
	b.WriteString("Extract the trip parameters from this goal.\n")
	b.WriteString("Respond with only a JSON object, no prose and no markdown fences, in exactly this shape:\n")
	b.WriteString(extractionSchema)
	b.WriteString("\nUse 0 for duration_days when the goal states no length, and \"\" for start_date when it states no date.\n")
	fmt.Fprintf(&b, "\nGoal: %s\n", goalText)
	return b.String()
}

// draftPrompt asks the model for a full itinerary draft. Forecast hints,
// when available, let the model plan around the weather.
func draftPrompt(goal StructuredGoal, hints []weather.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a travel planner. Create a %d-day itinerary for %s starting on %s.\n",
		goal.DurationDays, goal.Destination, goal.StartDate)
	if len(goal.Activities) > 0 {
		fmt.Fprintf(&b, "Focus on: %s.\n", strings.Join(goal.Activities, ", "))
	}
	if len(goal.Preferences) > 0 {
		fmt.Fprintf(&b, "Traveler preferences: %s.\n", strings.Join(goal.Preferences, ", "))
	}
	if len(hints) > 0 {
		b.WriteString("Expected weather:\n")
		for _, h := range hints {
			fmt.Fprintf(&b, "- %s: %s, %.0f to %.0f C, %d%% chance of rain\n",
				h.Date, h.Condition, h.MinTemp, h.MaxTemp, h.RainProbability)
		}
	}
	fmt.Fprintf(&b, "Plan 3 to 5 concrete tasks per day with realistic durations.\n")
	fmt.Fprintf(&b, "Respond with only a JSON object, no prose and no markdown fences, in exactly this shape with exactly %d entries in \"days\":\n", goal.DurationDays)
	b.WriteString(draftSchema)
	return b.String()
}

// repairPrompt re-asks after a malformed draft, naming the defect.
func repairPrompt(prompt, badOutput string, defect error) string {
	var b strings.Builder
	b.WriteString(prompt)
	fmt.Fprintf(&b, "\n\nYour previous response could not be used: %v\n", defect)
	b.WriteString("Previous response:\n")
	b.WriteString(truncateForPrompt(badOutput, 2000))
	b.WriteString("\nRespond again with only the valid JSON object.\n")
	return b.String()
}

func truncateForPrompt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
