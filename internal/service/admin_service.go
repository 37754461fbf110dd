package service

import (
	"fmt"
	"net/http"
	"time"

	"tavolo/internal/cache"
	"tavolo/internal/db"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/repository"
	"tavolo/internal/schedule"
)

// AdminService is the out-of-band management surface for the rule store and
// existing appointments. Every mutation invalidates the availability cache.
type AdminService struct {
	rules    *repository.AvailabilityRepository
	appts    *repository.AppointmentRepository
	cache    *cache.Cache
	notifier *NotifyService
}

func NewAdminService(rules *repository.AvailabilityRepository, appts *repository.AppointmentRepository, resultCache *cache.Cache, notifier *NotifyService) *AdminService {
	return &AdminService{rules: rules, appts: appts, cache: resultCache, notifier: notifier}
}

func (s *AdminService) ListAppointments(date, status string) ([]db.Appointment, error) {
	return s.appts.ListAppointments(date, status)
}

// CancelAppointment frees the slot, drops the cached aggregate and notifies
// the customer.
func (s *AdminService) CancelAppointment(id int) (*db.Appointment, error) {
	appt, err := s.appts.CancelAppointment(id)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(availabilityCacheKey)
	if s.notifier != nil {
		s.notifier.BookingCancelled(*appt)
	}
	return appt, nil
}

func (s *AdminService) ListRules() ([]db.AvailabilityRule, error) {
	return s.rules.ListRules()
}

func (s *AdminService) CreateRule(rule *db.AvailabilityRule) error {
	if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
		return apperrors.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("day_of_week must be 0-6, got %d", rule.DayOfWeek))
	}
	start, err := schedule.ParseClock(rule.StartTime)
	if err != nil {
		return apperrors.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	end, err := schedule.ParseClock(rule.EndTime)
	if err != nil {
		return apperrors.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if end <= start {
		return apperrors.NewHTTPError(http.StatusBadRequest, "end_time must be after start_time")
	}
	if rule.SlotDurationMinutes <= 0 {
		return apperrors.NewHTTPError(http.StatusBadRequest, "slot_duration_minutes must be positive")
	}

	if err := s.rules.CreateRule(rule); err != nil {
		return err
	}
	s.cache.Delete(availabilityCacheKey)
	return nil
}

func (s *AdminService) DeleteRule(id int) error {
	if err := s.rules.DeleteRule(id); err != nil {
		return err
	}
	s.cache.Delete(availabilityCacheKey)
	return nil
}

func (s *AdminService) ListBlockedDates() ([]db.BlockedDate, error) {
	return s.rules.ListBlockedDates()
}

func (s *AdminService) CreateBlockedDate(bd *db.BlockedDate) error {
	if _, err := time.Parse("2006-01-02", bd.Date); err != nil {
		return apperrors.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	if err := s.rules.CreateBlockedDate(bd); err != nil {
		return err
	}
	s.cache.Delete(availabilityCacheKey)
	return nil
}

func (s *AdminService) DeleteBlockedDate(id int) error {
	if err := s.rules.DeleteBlockedDate(id); err != nil {
		return err
	}
	s.cache.Delete(availabilityCacheKey)
	return nil
}
