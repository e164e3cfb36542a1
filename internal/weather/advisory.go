package weather

import "strings"

// Advisory composes an activity-planning advisory from daily aggregates.
// Multiple applicable advisories are joined with " | ".
func Advisory(condition string, minTemp, maxTemp float64, rainProbability int) string {
	var advisories []string

	switch {
	case maxTemp > 40:
		advisories = append(advisories, "EXTREME HEAT: plan indoor activities during midday (11 AM - 4 PM)")
	case maxTemp > 35:
		advisories = append(advisories, "Very hot day: prefer early morning and evening outdoor activities")
	case maxTemp < 5:
		advisories = append(advisories, "Very cold: layer clothing and prefer heated indoor venues")
	case minTemp < 0:
		advisories = append(advisories, "Freezing temperatures: check for ice and dress warmly")
	}

	switch {
	case rainProbability > 70:
		advisories = append(advisories, "High rain probability: prioritize indoor activities or covered venues")
	case rainProbability > 40:
		advisories = append(advisories, "Possible rain: have indoor backup plans ready")
	}

	switch strings.ToLower(condition) {
	case "thunderstorm", "storm":
		advisories = append(advisories, "STORM WARNING: stay indoors during storm periods")
	case "snow":
		advisories = append(advisories, "Snow expected: check travel conditions and dress warmly")
	case "fog":
		advisories = append(advisories, "Foggy conditions: allow extra travel time and check visibility")
	}

	if len(advisories) == 0 {
		if maxTemp >= 15 && maxTemp <= 30 && rainProbability < 30 {
			return "Great weather for outdoor activities"
		}
		return "Pleasant weather for most activities"
	}

	return strings.Join(advisories, " | ")
}
