package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTimeFormat is returned when a time-of-day string cannot be parsed.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// GenerateSlots returns the HH:MM start of every slot of durationMinutes that
// fits entirely within [startTime, endTime]. A final slot that would run past
// endTime is dropped, so the count is floor((end-start)/duration). Inputs are
// wall-clock HH:MM:SS or HH:MM strings.
func GenerateSlots(startTime, endTime string, durationMinutes int) ([]string, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidTimeFormat, durationMinutes)
	}

	start, err := ParseClock(startTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return nil, err
	}

	var slots []string
	for current := start; current+durationMinutes <= end; current += durationMinutes {
		slots = append(slots, minutesToClock(current))
	}
	return slots, nil
}

// ParseClock parses an HH:MM:SS or HH:MM string into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
	}

	return hours*60 + minutes, nil
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
