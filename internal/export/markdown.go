package export

import (
	"fmt"
	"strings"

	"github.com/harborline/wayplan/internal/planner"
	"github.com/harborline/wayplan/internal/weather"
)

// Markdown renders the plan as a human-readable itinerary. Each day gets a
// section with its summary, weather line, advisory quote, and a task
// checklist; completed tasks are checked off.
func Markdown(plan *planner.Plan) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Trip Plan: %s\n\n", plan.Goal)
	if plan.Description != "" {
		sb.WriteString(plan.Description + "\n\n")
	}
	fmt.Fprintf(&sb, "- Duration: %s\n", plan.TotalDuration)
	if !plan.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "- Created: %s\n", plan.CreatedAt.Format("2006-01-02 15:04 MST"))
	}

	for _, day := range plan.Days {
		fmt.Fprintf(&sb, "\n## Day %d: %s\n\n", day.DayNumber, day.Date)
		if day.Summary != "" {
			sb.WriteString(day.Summary + "\n\n")
		}
		if day.Weather != nil {
			sb.WriteString(weatherLine(day.Weather) + "\n\n")
			if day.Weather.Advisory != "" {
				fmt.Fprintf(&sb, "> %s\n\n", day.Weather.Advisory)
			}
		}
		for i, task := range day.Tasks {
			sb.WriteString(taskLine(i+1, task))
		}
	}

	return sb.String()
}

func weatherLine(snap *weather.Snapshot) string {
	line := fmt.Sprintf("Weather: %s, %.0f to %.0f C, %d%% chance of rain",
		snap.Condition, snap.MinTemp, snap.MaxTemp, snap.RainProbability)
	if snap.DataSource != "" {
		line += fmt.Sprintf(" (%s)", snap.DataSource)
	}
	return line
}

func taskLine(n int, task planner.Task) string {
	check := " "
	if task.Status == planner.TaskCompleted {
		check = "x"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. [%s] **%s**", n, check, task.Title)
	if task.EstimatedDuration != "" {
		fmt.Fprintf(&sb, " (%s)", task.EstimatedDuration)
	}
	sb.WriteString("\n")

	if task.Description != "" {
		fmt.Fprintf(&sb, "   %s\n", task.Description)
	}
	if info := task.ExternalInfo; info != nil {
		fmt.Fprintf(&sb, "   Where: %s", info.Name)
		if info.Address != "" {
			fmt.Fprintf(&sb, ", %s", info.Address)
		}
		if info.Link != "" {
			fmt.Fprintf(&sb, " (%s)", info.Link)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
