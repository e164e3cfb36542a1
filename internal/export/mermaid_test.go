package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/wayplan/internal/planner"
)

func TestMermaid_RendersTimeline(t *testing.T) {
	plan := exportablePlan()
	plan.Days = append(plan.Days, planner.Day{
		DayNumber: 2,
		Date:      "2026-09-11",
		Tasks: []planner.Task{
			{Title: "Weather advisory: high rain probability"},
			{Title: "Explore the city museum"},
		},
	})

	out := Mermaid(plan)

	assert.Contains(t, out, "timeline\n")
	assert.Contains(t, out, "  title 3 days in Jaipur\n")
	assert.Contains(t, out, "  section Day 1\n")
	assert.Contains(t, out, "    2026-09-10 : Visit Amber Fort\n")
	assert.Contains(t, out, ": Dinner at a rooftop restaurant\n")
	assert.Contains(t, out, "  section Day 2\n")
	assert.Contains(t, out, "    2026-09-11 : Weather advisory - high rain probability\n",
		"colons in titles must be rewritten, the syntax reserves them")
	assert.Contains(t, out, ": Explore the city museum\n")
}

func TestMermaid_EmptyDayKeepsPeriod(t *testing.T) {
	plan := &planner.Plan{
		Goal: "quiet weekend",
		Days: []planner.Day{{DayNumber: 1, Date: "2026-09-10"}},
	}

	out := Mermaid(plan)
	assert.Contains(t, out, "  section Day 1\n    2026-09-10\n")
}

func TestWrite_MermaidExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.mmd")
	require.NoError(t, Write(exportablePlan(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(raw) > 0)
	assert.Contains(t, string(raw), "timeline\n")
}
