// Package timemath converts between minutes-of-day, "HH:mm" strings and
// epoch-millisecond day anchors. All conversions are plain arithmetic on a
// day anchor so that a wall-clock string never goes through a time zone.
package timemath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinuteMs is one minute in epoch milliseconds.
const MinuteMs int64 = 60_000

const (
	DayMinutes = 24 * 60
	maxHour    = 23
	maxMinute  = 59
)

var hhmmPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)

// ParseTimeToMinutes accepts a number of minutes, an "H[:mm]" string or a
// numeric string. Hours clamp to 0-23 and minutes to 0-59. Anything else is 0.
func ParseTimeToMinutes(input any) int {
	switch v := input.(type) {
	case nil:
		return 0
	case int:
		return max(v, 0)
	case int32:
		return max(int(v), 0)
	case int64:
		return max(int(v), 0)
	case float32:
		return floatMinutes(float64(v))
	case float64:
		return floatMinutes(v)
	case string:
		return parseStringMinutes(v)
	case fmt.Stringer:
		return parseStringMinutes(v.String())
	default:
		return 0
	}
}

// LooksLikeHHmm reports whether s has the "H:mm" shape.
func LooksLikeHHmm(s string) bool {
	return hhmmPattern.MatchString(strings.TrimSpace(s))
}

func parseStringMinutes(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if m := hhmmPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return clamp(hour, 0, maxHour)*60 + clamp(minute, 0, maxMinute)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return floatMinutes(f)
}

func floatMinutes(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return int(math.Floor(f))
}

// FormatMinutesToTime renders minutes as "HH:mm" without wrapping at 24h,
// so 1590 becomes "26:30". Negative input renders "00:00".
func FormatMinutesToTime(minutes int) string {
	if minutes < 0 {
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// StartOfDayMs floors ms to 00:00 of its calendar day in loc.
// A nil loc means time.Local.
func StartOfDayMs(ms int64, loc *time.Location) int64 {
	if loc == nil {
		loc = time.Local
	}
	t := time.UnixMilli(ms).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).UnixMilli()
}

// StartMsFromHHmmOnSameDay anchors an "HH:mm" value on the day of dayStartMs.
func StartMsFromHHmmOnSameDay(dayStartMs int64, hhmm any, loc *time.Location) int64 {
	return StartOfDayMs(dayStartMs, loc) + int64(ParseTimeToMinutes(hhmm))*MinuteMs
}

// MsToHHmmFromDay is the display inverse of StartMsFromHHmmOnSameDay; the
// result wraps into [00:00, 24:00).
func MsToHHmmFromDay(ms, dayStartMs int64, loc *time.Location) string {
	diff := FloorDiv(ms-StartOfDayMs(dayStartMs, loc), MinuteMs)
	minutes := int(((diff % DayMinutes) + DayMinutes) % DayMinutes)
	return FormatMinutesToTime(minutes)
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// RoundToGrid snaps ms to the nearest multiple of step, halves rounding up.
func RoundToGrid(ms, step int64) int64 {
	if step <= 0 {
		return ms
	}
	return FloorDiv(ms+step/2, step) * step
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
