package export

import (
	"fmt"
	"strings"

	"github.com/harborline/wayplan/internal/planner"
)

// Mermaid renders the plan as a Mermaid timeline: one section per day, the
// date as the period, and task titles as events.
func Mermaid(plan *planner.Plan) string {
	var sb strings.Builder
	sb.WriteString("timeline\n")
	fmt.Fprintf(&sb, "  title %s\n", timelineLabel(plan.Goal))

	for _, day := range plan.Days {
		fmt.Fprintf(&sb, "  section Day %d\n", day.DayNumber)

		period := day.Date
		if period == "" {
			period = fmt.Sprintf("Day %d", day.DayNumber)
		}
		if len(day.Tasks) == 0 {
			fmt.Fprintf(&sb, "    %s\n", period)
			continue
		}
		for i, task := range day.Tasks {
			if i == 0 {
				fmt.Fprintf(&sb, "    %s : %s\n", period, timelineLabel(task.Title))
				continue
			}
			fmt.Fprintf(&sb, "    %s: %s\n", strings.Repeat(" ", len(period)), timelineLabel(task.Title))
		}
	}
	return sb.String()
}

// timelineLabel sanitizes text for the timeline syntax, which reserves
// colons as the period/event separator and hashes for escapes.
func timelineLabel(text string) string {
	return strings.NewReplacer(":", " -", "#", "", "\n", " ").Replace(text)
}
