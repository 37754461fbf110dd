package schedule

import (
	"errors"
	"testing"
)

func TestGenerateSlots(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		end      string
		duration int
		expected []string
	}{
		{
			name:     "half hour slots over a morning",
			start:    "09:00:00",
			end:      "12:00:00",
			duration: 30,
			expected: []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"},
		},
		{
			name:     "partial final slot is dropped",
			start:    "09:00:00",
			end:      "10:15:00",
			duration: 30,
			expected: []string{"09:00", "09:30"},
		},
		{
			name:     "final slot ending exactly at close is kept",
			start:    "11:00:00",
			end:      "12:00:00",
			duration: 30,
			expected: []string{"11:00", "11:30"},
		},
		{
			name:     "hour long slots",
			start:    "10:00:00",
			end:      "14:00:00",
			duration: 60,
			expected: []string{"10:00", "11:00", "12:00", "13:00"},
		},
		{
			name:     "short form input without seconds",
			start:    "18:30",
			end:      "20:00",
			duration: 45,
			expected: []string{"18:30", "19:15"},
		},
		{
			name:     "empty window",
			start:    "09:00:00",
			end:      "09:00:00",
			duration: 30,
			expected: nil,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			slots, err := GenerateSlots(c.start, c.end, c.duration)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(slots) != len(c.expected) {
				t.Fatalf("expected %d slots, got %d (%v)", len(c.expected), len(slots), slots)
			}
			for i, slot := range slots {
				if slot != c.expected[i] {
					t.Fatalf("slot %d: expected %s, got %s", i, c.expected[i], slot)
				}
			}
		})
	}
}

func TestGenerateSlots_StrictlyIncreasing(t *testing.T) {
	slots, err := GenerateSlots("08:00:00", "22:00:00", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// floor((22:00 - 08:00) / 25m) = floor(840 / 25) = 33
	if len(slots) != 33 {
		t.Fatalf("expected 33 slots, got %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if slots[i] <= slots[i-1] {
			t.Fatalf("slots not strictly increasing at %d: %s then %s", i, slots[i-1], slots[i])
		}
	}
}

func TestGenerateSlots_InvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		end      string
		duration int
	}{
		{"garbage start", "not-a-time", "12:00:00", 30},
		{"garbage end", "09:00:00", "later", 30},
		{"hour out of range", "25:00:00", "26:00:00", 30},
		{"minute out of range", "09:60:00", "12:00:00", 30},
		{"zero duration", "09:00:00", "12:00:00", 0},
		{"negative duration", "09:00:00", "12:00:00", -15},
		{"empty string", "", "12:00:00", 30},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := GenerateSlots(c.start, c.end, c.duration)
			if !errors.Is(err, ErrInvalidTimeFormat) {
				t.Fatalf("expected ErrInvalidTimeFormat, got %v", err)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		input    string
		expected int
	}{
		{"00:00:00", 0},
		{"00:15", 15},
		{"09:05:00", 545},
		{"14:35", 875},
		{"23:59:59", 1439},
	}

	for _, c := range cases {
		got, err := ParseClock(c.input)
		if err != nil {
			t.Fatalf("ParseClock(%q): unexpected error: %v", c.input, err)
		}
		if got != c.expected {
			t.Fatalf("ParseClock(%q): expected %d, got %d", c.input, c.expected, got)
		}
	}
}
