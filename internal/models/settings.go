package models

import "fmt"

const (
	// DefaultDayStart is the first hour shown on the timeline
	DefaultDayStart = "08:00"
	// DefaultDayEnd is the last hour shown on the timeline
	DefaultDayEnd = "20:00"
)

// TimeSettings controls the visible range of the day and the clock format
type TimeSettings struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Use24Hour bool   `json:"use24Hour"`
}

// DefaultTimeSettings returns the settings used when nothing is persisted
func DefaultTimeSettings() TimeSettings {
	return TimeSettings{
		StartTime: DefaultDayStart,
		EndTime:   DefaultDayEnd,
		Use24Hour: false,
	}
}

// Validate checks both clocks and that the start is not after the end
func (s TimeSettings) Validate() error {
	start, err := ClockMinutes(s.StartTime)
	if err != nil {
		return WrapError(ErrCodeInvalid, fmt.Sprintf("invalid start time %q", s.StartTime), err)
	}
	end, err := ClockMinutes(s.EndTime)
	if err != nil {
		return WrapError(ErrCodeInvalid, fmt.Sprintf("invalid end time %q", s.EndTime), err)
	}
	if start > end {
		return ErrInvalidTimeRange
	}
	return nil
}

// Slots returns hourly HH:MM labels from StartTime through EndTime inclusive.
// Invalid settings yield no slots.
func (s TimeSettings) Slots() []string {
	start, err := ClockMinutes(s.StartTime)
	if err != nil {
		return nil
	}
	end, err := ClockMinutes(s.EndTime)
	if err != nil {
		return nil
	}
	var slots []string
	for m := start; m <= end; m += 60 {
		slots = append(slots, FormatClockMinutes(m))
	}
	return slots
}

// Display renders an HH:MM clock in the configured format
func (s TimeSettings) Display(clock string) string {
	return FormatClock(clock, s.Use24Hour)
}
