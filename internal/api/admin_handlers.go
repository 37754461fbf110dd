package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tavolo/internal/db"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/repository"
	"tavolo/internal/service"

	"github.com/gorilla/mux"
)

type AdminHandler struct {
	Service *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")

	appts, err := h.Service.ListAppointments(date, status)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "database error"})
		return
	}

	out := make([]AppointmentResponse, 0, len(appts))
	for _, appt := range appts {
		out = append(out, AppointmentResponse{
			ID:              appt.ID,
			CustomerName:    appt.CustomerName,
			CustomerEmail:   appt.CustomerEmail,
			CustomerPhone:   appt.CustomerPhone,
			AppointmentDate: appt.AppointmentDate,
			AppointmentTime: appt.AppointmentTime,
			ServiceType:     appt.ServiceType,
			Notes:           appt.Notes,
			Status:          appt.Status,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return
	}

	appt, err := h.Service.CancelAppointment(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "appointment not found or already cancelled"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "could not cancel appointment"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "appointment cancelled",
		"id":      appt.ID,
		"status":  appt.Status,
	})
}

func (h *AdminHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Service.ListRules()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "database error"})
		return
	}
	out := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, ruleResponse(rule))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	rule := db.AvailabilityRule{
		DayOfWeek:           req.DayOfWeek,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
		IsActive:            active,
	}
	if err := h.Service.CreateRule(&rule); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ruleResponse(rule))
}

func (h *AdminHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Service.DeleteRule, "rule")
}

func (h *AdminHandler) ListBlockedDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.Service.ListBlockedDates()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "database error"})
		return
	}
	out := make([]BlockedDateResponse, 0, len(dates))
	for _, bd := range dates {
		out = append(out, BlockedDateResponse{ID: bd.ID, Date: bd.Date, Reason: bd.Reason})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) CreateBlockedDate(w http.ResponseWriter, r *http.Request) {
	var req BlockedDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	bd := db.BlockedDate{Date: req.Date, Reason: req.Reason}
	if err := h.Service.CreateBlockedDate(&bd); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, BlockedDateResponse{ID: bd.ID, Date: bd.Date, Reason: bd.Reason})
}

func (h *AdminHandler) DeleteBlockedDate(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Service.DeleteBlockedDate, "blocked date")
}

func (h *AdminHandler) deleteByID(w http.ResponseWriter, r *http.Request, del func(int) error, what string) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return
	}
	if err := del(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: what + " not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "could not delete " + what})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": what + " deleted"})
}

// writeServiceError maps service-level HTTPErrors to their status and hides
// everything else behind a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		writeJSON(w, httpErr.Code, ErrorResponse{Error: httpErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "database error"})
}

func ruleResponse(rule db.AvailabilityRule) RuleResponse {
	return RuleResponse{
		ID:                  rule.ID,
		DayOfWeek:           rule.DayOfWeek,
		StartTime:           rule.StartTime,
		EndTime:             rule.EndTime,
		SlotDurationMinutes: rule.SlotDurationMinutes,
		IsActive:            rule.IsActive,
	}
}
