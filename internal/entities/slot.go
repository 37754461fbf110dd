package entities

import "time"

// TimeSlot is one bookable start time within the 30-day window. Derived per
// aggregation call, never persisted.
type TimeSlot struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM
	Available bool   `json:"available"`
	DayName   string `json:"day_name"`
}

type AvailabilityResult struct {
	Slots       []TimeSlot `json:"slots"`
	Timezone    string     `json:"timezone"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// SlotCheck is the result of validating one (date, time) pair.
type SlotCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
