package weather

import "time"

// seasonPattern holds the climate baseline for one season before latitude
// adjustment.
type seasonPattern struct {
	baseTemp    float64
	tempRange   float64
	rainProb    int
	condition   string
	description string
	advisory    string
}

var seasonPatterns = map[string]seasonPattern{
	"Winter": {
		baseTemp:    5,
		tempRange:   8,
		rainProb:    40,
		condition:   "Clouds",
		description: "overcast clouds",
		advisory:    "Winter season: pack warm clothes and check for seasonal weather patterns",
	},
	"Spring": {
		baseTemp:    15,
		tempRange:   12,
		rainProb:    50,
		condition:   "Rain",
		description: "light rain",
		advisory:    "Spring season: variable weather, pack layers and rain protection",
	},
	"Summer": {
		baseTemp:    25,
		tempRange:   10,
		rainProb:    30,
		condition:   "Clear",
		description: "clear sky",
		advisory:    "Summer season: expect warm weather, pack sun protection",
	},
	"Autumn": {
		baseTemp:    18,
		tempRange:   10,
		rainProb:    45,
		condition:   "Clouds",
		description: "scattered clouds",
		advisory:    "Autumn season: cool and variable weather, pack layers",
	},
}

// seasonFor maps a month to a season name, flipped for the southern
// hemisphere.
func seasonFor(month time.Month, northern bool) string {
	var season string
	switch month {
	case time.December, time.January, time.February:
		season = "Winter"
	case time.March, time.April, time.May:
		season = "Spring"
	case time.June, time.July, time.August:
		season = "Summer"
	default:
		season = "Autumn"
	}
	if !northern {
		opposite := map[string]string{
			"Winter": "Summer",
			"Spring": "Autumn",
			"Summer": "Winter",
			"Autumn": "Spring",
		}
		season = opposite[season]
	}
	return season
}

// latitudeAdjustment returns the temperature offset and humidity baseline for
// a latitude band: polar, temperate, subtropical, tropical.
func latitudeAdjustment(lat float64) (tempModifier float64, humidity int) {
	abs := lat
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > 60:
		return -15, 70
	case abs > 40:
		return 0, 60
	case abs > 23:
		return 10, 65
	default:
		return 20, 75
	}
}

// SeasonalEstimate synthesizes a snapshot for a date beyond the forecast
// horizon, from the month's season and the location's latitude.
func SeasonalEstimate(date time.Time, lat float64) Snapshot {
	season := seasonFor(date.Month(), lat >= 0)
	pattern := seasonPatterns[season]
	modifier, humidity := latitudeAdjustment(lat)

	base := pattern.baseTemp + modifier
	return Snapshot{
		Date:            date.Format(DateFormat),
		MinTemp:         base - pattern.tempRange/2,
		MaxTemp:         base + pattern.tempRange/2,
		AvgTemp:         base,
		Condition:       pattern.condition,
		Description:     pattern.description,
		RainProbability: pattern.rainProb,
		Humidity:        humidity,
		Advisory:        pattern.advisory,
		DataSource:      "seasonal-estimate",
	}
}
