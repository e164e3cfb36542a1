// Package weather defines the forecast collaborator interface and the
// snapshot entity attached to plan days during enrichment.
package weather

import (
	"context"
	"time"
)

// DateFormat is the calendar-date layout used throughout the planner.
const DateFormat = "2006-01-02"

// Snapshot is the forecast for one location and date. After enrichment it is
// owned by the Day it is attached to.
type Snapshot struct {
	Date            string  `json:"date" bson:"date"`
	MinTemp         float64 `json:"min_temp" bson:"min_temp"`
	MaxTemp         float64 `json:"max_temp" bson:"max_temp"`
	AvgTemp         float64 `json:"avg_temp" bson:"avg_temp"`
	Condition       string  `json:"condition" bson:"condition"`
	Description     string  `json:"description,omitempty" bson:"description,omitempty"`
	RainProbability int     `json:"rain_probability" bson:"rain_probability"`
	Humidity        int     `json:"humidity,omitempty" bson:"humidity,omitempty"`
	WindSpeed       float64 `json:"wind_speed,omitempty" bson:"wind_speed,omitempty"`
	Advisory        string  `json:"advisory,omitempty" bson:"advisory,omitempty"`
	DataSource      string  `json:"data_source" bson:"data_source"`
}

// Provider supplies forecast snapshots for a location and date range.
//
// Implementations: OpenWeather (production), test stubs.
type Provider interface {
	// Forecast returns one snapshot per day from `from` to `to` inclusive.
	// Failures are reported as *provider.Error.
	Forecast(ctx context.Context, location string, from, to time.Time) ([]Snapshot, error)
}
