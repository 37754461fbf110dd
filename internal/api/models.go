package api

import "tavolo/internal/entities"

type ErrorResponse struct {
	Error  string                `json:"error"`
	Field  string                `json:"field,omitempty"`
	Errors []entities.FieldError `json:"errors,omitempty"`
}

type CreateAppointmentResponse struct {
	ID              int    `json:"id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	CustomerName    string `json:"customer_name"`
	Status          string `json:"status"`
}

// Admin surface

type RuleRequest struct {
	DayOfWeek           int    `json:"day_of_week"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	IsActive            *bool  `json:"is_active"` // defaults to true
}

type RuleResponse struct {
	ID                  int    `json:"id"`
	DayOfWeek           int    `json:"day_of_week"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	IsActive            bool   `json:"is_active"`
}

type BlockedDateRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

type BlockedDateResponse struct {
	ID     int    `json:"id"`
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

type AppointmentResponse struct {
	ID              int    `json:"id"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	ServiceType     string `json:"service_type,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Status          string `json:"status"`
}
