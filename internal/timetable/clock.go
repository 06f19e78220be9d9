package timetable

import (
	"fmt"
	"regexp"
	"strconv"
)

var clockRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// ParseClockTime returns the minutes since midnight of the first H:MM or
// HH:MM pattern found in text. Text without such a pattern yields 0.
func ParseClockTime(text string) int {
	m := clockRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return h*60 + mins
}

// HasClockTime reports whether text contains an H:MM or HH:MM pattern.
func HasClockTime(text string) bool {
	return clockRe.MatchString(text)
}

// MinutesBetween returns end minus start in minutes. The result is negative
// when end precedes start.
func MinutesBetween(start, end string) int {
	return ParseClockTime(end) - ParseClockTime(start)
}

// AddMinutes offsets a clock time and renders it as HH:MM. Results past
// midnight are not wrapped, so AddMinutes("23:50", 30) is "24:20".
func AddMinutes(clock string, minutes int) string {
	total := ParseClockTime(clock) + minutes
	return fmt.Sprintf("%02d:%02d", floorDiv(total, 60), floorMod(total, 60))
}

// HumanizeDuration renders a minute count as "45 min", "2h" or "1h 30min".
func HumanizeDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m > 0 {
		return fmt.Sprintf("%dh %dmin", h, m)
	}
	return fmt.Sprintf("%dh", h)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
