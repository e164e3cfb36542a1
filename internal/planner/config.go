package planner

import "time"

// Config holds the tunables for a plan generation run.
type Config struct {
	// DefaultDurationDays applies when the goal states no trip length.
	DefaultDurationDays int

	// MaxDurationDays bounds accepted trip lengths; longer goals are
	// rejected during analysis.
	MaxDurationDays int

	// RepairAttempts is how many repair re-prompts a malformed draft gets
	// before synthesis fails.
	RepairAttempts int

	// RainAdvisoryThreshold is the rain probability (percent) at or above
	// which an advisory task is injected into a day.
	RainAdvisoryThreshold int

	// MaxConcurrentDays bounds the day-enrichment fan-out.
	MaxConcurrentDays int

	// ModelTimeout bounds each generative-model call.
	ModelTimeout time.Duration

	// EnrichTimeout bounds each weather or place lookup during enrichment.
	EnrichTimeout time.Duration

	// GroundedCategories lists the task categories that get venue
	// grounding from the place search provider.
	GroundedCategories []string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultDurationDays:   3,
		MaxDurationDays:       30,
		RepairAttempts:        1,
		RainAdvisoryThreshold: 70,
		MaxConcurrentDays:     4,
		ModelTimeout:          60 * time.Second,
		EnrichTimeout:         15 * time.Second,
		GroundedCategories: []string{
			"restaurant",
			"museum",
			"market",
			"temple",
			"fort",
			"palace",
			"cafe",
			"gallery",
			"beach",
			"park",
		},
	}
}
