package models

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the canonical calendar date form (YYYY-MM-DD)
	DateLayout = "2006-01-02"
	// ClockLayout is the canonical 24-hour time-of-day form (HH:MM)
	ClockLayout = "15:04"

	twelveHourLayout = "3:04 PM"
)

// DateKey projects an instant onto its calendar date in the instant's location
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD date as midnight in loc
func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", s)
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// IsDateKey reports whether s is a canonical YYYY-MM-DD date
func IsDateKey(s string) bool {
	_, err := ParseDateKey(s, time.UTC)
	return err == nil
}

// ClockMinutes converts a zero-padded HH:MM clock into minutes after midnight
func ClockMinutes(s string) (int, error) {
	if len(s) != len(ClockLayout) {
		return 0, fmt.Errorf("time %q is not HH:MM", s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("time %q is not HH:MM: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// IsClock reports whether s is a canonical HH:MM clock
func IsClock(s string) bool {
	_, err := ClockMinutes(s)
	return err == nil
}

// FormatClockMinutes renders minutes after midnight as HH:MM
func FormatClockMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatClock renders an HH:MM clock as "15:00" or "3:00 PM".
// Unparseable input is returned unchanged.
func FormatClock(clock string, use24Hour bool) string {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return clock
	}
	if use24Hour {
		return t.Format(ClockLayout)
	}
	return t.Format(twelveHourLayout)
}
