package service

import (
	"log"

	"tavolo/internal/cache"
	"tavolo/internal/db"
	"tavolo/internal/entities"
	"tavolo/internal/repository"
)

// AppointmentStore is what the booking committer needs from storage.
type AppointmentStore interface {
	HasActiveAppointmentAt(date, timeOfDay string) (bool, error)
	CreateAppointment(appt *db.Appointment) error
}

// BookingNotifier receives the committed appointment. Delivery is decoupled
// from booking success.
type BookingNotifier interface {
	BookingCreated(appt db.Appointment)
}

type BookingService struct {
	store    AppointmentStore
	cache    *cache.Cache
	notifier BookingNotifier
}

func NewBookingService(store AppointmentStore, resultCache *cache.Cache, notifier BookingNotifier) *BookingService {
	return &BookingService{store: store, cache: resultCache, notifier: notifier}
}

// CreateAppointment commits the booking. The caller has already run field
// validation and the slot validator. The uniqueness index at the storage
// layer is the real guard against concurrent double booking; the pre-check
// here only fails fast.
func (s *BookingService) CreateAppointment(req *entities.BookingRequest) (*db.Appointment, error) {
	// Any outcome on the commit path may follow a state change elsewhere
	// (e.g. a concurrent commit that won the slot), so the cached aggregate
	// is dropped unconditionally.
	defer s.cache.Delete(availabilityCacheKey)

	timeOfDay := normalizeTime(req.AppointmentTime)

	taken, err := s.store.HasActiveAppointmentAt(req.AppointmentDate, timeOfDay)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrSlotTaken
	}

	appt := &db.Appointment{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: timeOfDay,
		ServiceType:     req.ServiceType,
		Notes:           req.Notes,
		Status:          db.StatusConfirmed,
	}
	if err := s.store.CreateAppointment(appt); err != nil {
		return nil, err
	}

	log.Printf("Appointment %d created for %s %s", appt.ID, appt.AppointmentDate, appt.AppointmentTime)
	if s.notifier != nil {
		s.notifier.BookingCreated(*appt)
	}
	return appt, nil
}

// normalizeTime turns HH:MM into the stored HH:MM:SS form.
func normalizeTime(t string) string {
	if len(t) == 5 {
		return t + ":00"
	}
	return t
}
