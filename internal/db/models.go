package db

import "time"

// AvailabilityRule is the recurring weekly template of open hours for one
// day of the week. Sunday = 0. Times are wall clock in the business timezone.
type AvailabilityRule struct {
	ID                  int
	DayOfWeek           int
	StartTime           string // HH:MM:SS
	EndTime             string // HH:MM:SS
	SlotDurationMinutes int
	IsActive            bool
}

// BlockedDate suppresses all slots on one calendar date regardless of rules.
type BlockedDate struct {
	ID     int
	Date   string // YYYY-MM-DD
	Reason string
}

type Appointment struct {
	ID              int
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	AppointmentDate string // YYYY-MM-DD
	AppointmentTime string // HH:MM:SS
	ServiceType     string
	Notes           string
	Status          string
	ReminderSent    bool
	CreatedAt       time.Time
}

// BookedSlot is the (date, time) key of a non-cancelled appointment.
type BookedSlot struct {
	Date string
	Time string
}

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)
