package entities

import (
	"regexp"
	"strings"
)

type BookingRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	AppointmentDate string `json:"appointment_date"` // YYYY-MM-DD
	AppointmentTime string `json:"appointment_time"` // HH:MM
	ServiceType     string `json:"service_type,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ValidDateFormat reports whether s is a zero-padded YYYY-MM-DD string.
func ValidDateFormat(s string) bool { return dateRe.MatchString(s) }

// ValidTimeFormat reports whether s is a zero-padded HH:MM string.
func ValidTimeFormat(s string) bool { return timeRe.MatchString(s) }

// Validate performs field-level validation and returns one error per bad
// field. It does not check the slot against availability rules.
func (r *BookingRequest) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(r.CustomerName) == "" {
		errs = append(errs, FieldError{Field: "customer_name", Message: "name is required"})
	}
	if !emailRe.MatchString(r.CustomerEmail) {
		errs = append(errs, FieldError{Field: "customer_email", Message: "a valid email is required"})
	}
	if !phoneRe.MatchString(r.CustomerPhone) {
		errs = append(errs, FieldError{Field: "customer_phone", Message: "a valid phone number is required"})
	}
	if !dateRe.MatchString(r.AppointmentDate) {
		errs = append(errs, FieldError{Field: "appointment_date", Message: "date must be YYYY-MM-DD"})
	}
	if !timeRe.MatchString(r.AppointmentTime) {
		errs = append(errs, FieldError{Field: "appointment_time", Message: "time must be HH:MM"})
	}

	return errs
}
