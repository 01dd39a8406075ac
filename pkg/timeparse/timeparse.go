// Package timeparse normalizes the free-form day tokens and time ranges that
// schedule rows carry ("MWF", "T/TH", "9:00-10:30 AM") into canonical weekday
// names and 24-hour HH:MM:SS boundaries.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var dayNames = map[string]string{
	"M":   "Monday",
	"MON": "Monday",
	"T":   "Tuesday",
	"TUE": "Tuesday",
	"W":   "Wednesday",
	"WED": "Wednesday",
	"TH":  "Thursday",
	"THU": "Thursday",
	"F":   "Friday",
	"FRI": "Friday",
	"S":   "Saturday",
	"SAT": "Saturday",
	"SU":  "Sunday",
	"SUN": "Sunday",
}

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])?$`)

// NormalizeDay maps a single day token to its canonical weekday name.
// Unknown tokens pass through unchanged; this is a lenient fallback, not a
// validation gate.
func NormalizeDay(token string) string {
	if name, ok := dayNames[strings.ToUpper(strings.TrimSpace(token))]; ok {
		return name
	}
	return token
}

// ExpandDays converts a day pattern into the ordered set of weekday names it
// covers. Slash-separated patterns normalize each side; the multi-day
// shorthands TTH/TH, MWF, and MW expand to their fixed sets; anything else is
// a single normalized day.
func ExpandDays(token string) []string {
	trimmed := strings.TrimSpace(token)
	if strings.Contains(trimmed, "/") {
		parts := strings.Split(trimmed, "/")
		days := make([]string, 0, len(parts))
		for _, p := range parts {
			days = append(days, NormalizeDay(p))
		}
		return days
	}

	switch strings.ToUpper(trimmed) {
	case "TTH", "TH":
		return []string{"Tuesday", "Thursday"}
	case "MWF":
		return []string{"Monday", "Wednesday", "Friday"}
	case "MW":
		return []string{"Monday", "Wednesday"}
	}
	return []string{NormalizeDay(trimmed)}
}

// ParseTimeTo24 converts "H:MM" or "HH:MM" with an optional AM/PM suffix to
// canonical "HH:MM:SS". The second return value is false when the text does
// not look like a clock time; callers must exclude such values from matching
// rather than guessing.
func ParseTimeTo24(text string) (string, bool) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return "", false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return "", false
	}

	switch strings.ToUpper(m[3]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	}
	// No suffix: the hour is taken as given, even for ambiguous 12-hour input.

	return fmt.Sprintf("%02d:%02d:00", hour, minute), true
}

// TimeRange holds the parsed boundaries of a "start-end" schedule time.
// Either side is empty when it failed to parse.
type TimeRange struct {
	Start string
	End   string
}

// ParseScheduleTime splits a "start-end" range once on "-" and parses both
// ends independently. An AM/PM suffix applies only to the side carrying it;
// a bare "9:00-10:30 AM" start stays 09:00:00.
func ParseScheduleTime(text string) TimeRange {
	parts := strings.SplitN(text, "-", 2)
	var tr TimeRange
	tr.Start, _ = ParseTimeTo24(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		tr.End, _ = ParseTimeTo24(strings.TrimSpace(parts[1]))
	}
	return tr
}
