package planner

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// startDateLeadDays is the assumed lead time when the goal names no date.
const startDateLeadDays = 3

var (
	inDaysRe  = regexp.MustCompile(`\bin (\d+) days?\b`)
	inWeeksRe = regexp.MustCompile(`\bin (\d+) weeks?\b`)

	// "25th oct", "3rd October"
	dayMonthRe = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)? (` + monthPattern + `)\b`)
	// "oct 25", "October 3rd"
	monthDayRe = regexp.MustCompile(`\b(` + monthPattern + `) (\d{1,2})(?:st|nd|rd|th)?\b`)
)

const monthPattern = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var monthsByPrefix = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// inferStartDate resolves the trip start date from relative expressions
// ("tomorrow", "next weekend", "in 2 weeks") or explicit ones ("25th oct").
// Without any date cue the trip is assumed to start in a few days.
func inferStartDate(goal string, now time.Time) time.Time {
	text := strings.ToLower(goal)
	today := dateOnly(now)

	switch {
	case strings.Contains(text, "day after tomorrow"):
		return today.AddDate(0, 0, 2)
	case strings.Contains(text, "tomorrow"):
		return today.AddDate(0, 0, 1)
	case strings.Contains(text, "today"):
		return today
	case strings.Contains(text, "next weekend"):
		return upcomingSaturday(today).AddDate(0, 0, 7)
	case strings.Contains(text, "weekend"):
		return upcomingSaturday(today)
	case strings.Contains(text, "next week"):
		return nextMonday(today)
	case strings.Contains(text, "next month"):
		return today.AddDate(0, 0, 30)
	}

	if m := inDaysRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n)
	}
	if m := inWeeksRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, 7*n)
	}
	if d, ok := explicitDate(text, today); ok {
		return d
	}

	return today.AddDate(0, 0, startDateLeadDays)
}

// explicitDate matches "25th oct" or "oct 25" forms. A date already past
// this year rolls forward to the next.
func explicitDate(text string, today time.Time) (time.Time, bool) {
	var dayStr, monthStr string
	if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		dayStr, monthStr = m[1], m[2]
	} else if m := monthDayRe.FindStringSubmatch(text); m != nil {
		monthStr, dayStr = m[1], m[2]
	} else {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := monthsByPrefix[monthStr[:3]]
	if !ok {
		return time.Time{}, false
	}

	date := time.Date(today.Year(), month, day, 0, 0, 0, 0, today.Location())
	if date.Month() != month {
		// Day overflowed the month, e.g. "31st feb".
		return time.Time{}, false
	}
	if date.Before(today) {
		date = date.AddDate(1, 0, 0)
	}
	return date, true
}

// upcomingSaturday returns the Saturday of the current week, or today when
// today already is one.
func upcomingSaturday(today time.Time) time.Time {
	days := (int(time.Saturday) - int(today.Weekday()) + 7) % 7
	return today.AddDate(0, 0, days)
}

// nextMonday returns the Monday of the following week.
func nextMonday(today time.Time) time.Time {
	days := (int(time.Monday) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
