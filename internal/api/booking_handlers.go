package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tavolo/internal/entities"
	"tavolo/internal/repository"
	"tavolo/internal/service"
)

type BookingHandler struct {
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
}

func NewBookingHandler(availability *service.AvailabilityService, bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{Availability: availability, Bookings: bookings}
}

func (h *BookingHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	res, err := h.Availability.GetAvailability()
	if err != nil {
		log.Printf("Error loading availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "error loading availability"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BookingHandler) CheckSlot(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	timeOfDay := r.URL.Query().Get("time")

	check, err := h.Availability.CheckSlot(date, timeOfDay)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSlotFormat) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "date must be YYYY-MM-DD and time must be HH:MM"})
			return
		}
		log.Printf("Error checking slot %s %s: %v", date, timeOfDay, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "error checking slot"})
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (h *BookingHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Errors: fieldErrs})
		return
	}

	// Re-validate the slot against current rules right before committing;
	// the cached aggregate the client saw may be stale.
	check, err := h.Availability.CheckSlot(req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSlotFormat) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Errors: []entities.FieldError{
				{Field: "appointment_date", Message: "date must be YYYY-MM-DD"},
				{Field: "appointment_time", Message: "time must be HH:MM"},
			}})
			return
		}
		log.Printf("Error validating slot for booking: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "error validating slot"})
		return
	}
	// "slot already booked" falls through: the committer's own pre-check
	// surfaces the conflict and drops the cached aggregate.
	if !check.Available && check.Reason != "slot already booked" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: check.Reason, Errors: []entities.FieldError{
			{Field: "appointment_time", Message: check.Reason},
		}})
		return
	}

	appt, err := h.Bookings.CreateAppointment(&req)
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "slot already booked", Field: "appointment_time"})
			return
		}
		log.Printf("Error creating appointment: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "error creating appointment"})
		return
	}

	writeJSON(w, http.StatusCreated, CreateAppointmentResponse{
		ID:              appt.ID,
		AppointmentDate: appt.AppointmentDate,
		AppointmentTime: appt.AppointmentTime,
		CustomerName:    appt.CustomerName,
		Status:          appt.Status,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
