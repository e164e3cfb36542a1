package planner

import (
	"strings"
	"time"

	"github.com/harborline/wayplan/internal/places"
	"github.com/harborline/wayplan/internal/weather"
)

// TaskStatus is the lifecycle state of a single itinerary task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// normalizeTaskStatus maps free-form model output onto the three canonical
// statuses. Anything unrecognized, including the empty string, is pending.
func normalizeTaskStatus(raw string) TaskStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in_progress", "in progress", "ongoing", "started":
		return TaskInProgress
	case "completed", "complete", "done", "finished":
		return TaskCompleted
	default:
		return TaskPending
	}
}

// Task is one activity within a day. Title and description are
// AI-authored; ExternalInfo carries the venue grounding merged in during
// enrichment and never overwrites them.
type Task struct {
	Title             string            `json:"title" bson:"title"`
	Description       string            `json:"description" bson:"description"`
	EstimatedDuration string            `json:"estimated_duration" bson:"estimated_duration"`
	Status            TaskStatus        `json:"status" bson:"status"`
	ExternalInfo      *places.Candidate `json:"external_info,omitempty" bson:"external_info,omitempty"`
}

// Day is one calendar day of the plan.
type Day struct {
	DayNumber int               `json:"day_number" bson:"day_number"`
	Date      string            `json:"date" bson:"date"`
	Summary   string            `json:"summary" bson:"summary"`
	Tasks     []Task            `json:"tasks" bson:"tasks"`
	Weather   *weather.Snapshot `json:"weather_info,omitempty" bson:"weather_info,omitempty"`
}

// Plan is the canonical, validated output of the pipeline. It carries no
// identifier: the store assigns one when the plan is persisted.
type Plan struct {
	Goal          string    `json:"goal" bson:"goal"`
	Description   string    `json:"description" bson:"description"`
	TotalDuration string    `json:"total_duration" bson:"total_duration"`
	Days          []Day     `json:"days" bson:"days"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// TaskCount returns the number of tasks across all days.
func (p *Plan) TaskCount() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Tasks)
	}
	return n
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	out.Days = make([]Day, len(p.Days))
	for i, d := range p.Days {
		day := d
		day.Tasks = make([]Task, len(d.Tasks))
		for j, t := range d.Tasks {
			task := t
			if t.ExternalInfo != nil {
				info := *t.ExternalInfo
				task.ExternalInfo = &info
			}
			day.Tasks[j] = task
		}
		if d.Weather != nil {
			snap := *d.Weather
			day.Weather = &snap
		}
		out.Days[i] = day
	}
	return &out
}
