package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonalEstimate_NorthernWinter(t *testing.T) {
	date := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	snap := SeasonalEstimate(date, 48.0)

	assert.Equal(t, "2026-01-15", snap.Date)
	assert.Equal(t, 1.0, snap.MinTemp)
	assert.Equal(t, 9.0, snap.MaxTemp)
	assert.Equal(t, 5.0, snap.AvgTemp)
	assert.Equal(t, "Clouds", snap.Condition)
	assert.Equal(t, 40, snap.RainProbability)
	assert.Equal(t, 60, snap.Humidity)
	assert.Contains(t, snap.Advisory, "Winter season")
	assert.Equal(t, "seasonal-estimate", snap.DataSource)
}

func TestSeasonalEstimate_SouthernHemisphereFlipsSeasons(t *testing.T) {
	date := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	snap := SeasonalEstimate(date, -33.9)

	assert.Equal(t, "Clear", snap.Condition, "January below the equator is summer")
	assert.Equal(t, 35.0, snap.AvgTemp, "subtropical band adds 10 to the summer baseline")
	assert.Equal(t, 30, snap.RainProbability)
	assert.Contains(t, snap.Advisory, "Summer season")
}

func TestSeasonalEstimate_PolarLatitudeCoolsBaseline(t *testing.T) {
	date := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)

	snap := SeasonalEstimate(date, 68.0)

	assert.Equal(t, 10.0, snap.AvgTemp, "polar band subtracts 15 from the summer baseline")
	assert.Equal(t, 70, snap.Humidity)
}
