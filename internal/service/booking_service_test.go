package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"tavolo/internal/cache"
	"tavolo/internal/db"
	"tavolo/internal/entities"
	"tavolo/internal/repository"
)

// fakeApptStore enforces slot uniqueness under a mutex, like the partial
// unique index does in Postgres.
type fakeApptStore struct {
	mu     sync.Mutex
	nextID int
	taken  map[string]bool
}

func newFakeApptStore() *fakeApptStore {
	return &fakeApptStore{taken: make(map[string]bool)}
}

func (f *fakeApptStore) HasActiveAppointmentAt(date, timeOfDay string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taken[date+"_"+timeOfDay], nil
}

func (f *fakeApptStore) CreateAppointment(appt *db.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := appt.AppointmentDate + "_" + appt.AppointmentTime
	if f.taken[key] {
		return repository.ErrSlotTaken
	}
	f.taken[key] = true
	f.nextID++
	appt.ID = f.nextID
	appt.CreatedAt = time.Now()
	return nil
}

type captureNotifier struct {
	mu     sync.Mutex
	events []db.Appointment
}

func (n *captureNotifier) BookingCreated(appt db.Appointment) {
	n.mu.Lock()
	n.events = append(n.events, appt)
	n.mu.Unlock()
}

func bookingReq() *entities.BookingRequest {
	return &entities.BookingRequest{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "+39 333 1234567",
		AppointmentDate: "2026-09-07",
		AppointmentTime: "10:00",
	}
}

func TestCreateAppointment_Success(t *testing.T) {
	store := newFakeApptStore()
	resultCache := cache.New()
	resultCache.Set(availabilityCacheKey, "stale", time.Minute)
	notifier := &captureNotifier{}
	svc := NewBookingService(store, resultCache, notifier)

	appt, err := svc.CreateAppointment(bookingReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if appt.Status != db.StatusConfirmed {
		t.Fatalf("expected status confirmed, got %s", appt.Status)
	}
	if appt.AppointmentTime != "10:00:00" {
		t.Fatalf("expected normalized time 10:00:00, got %s", appt.AppointmentTime)
	}

	if _, ok := resultCache.Get(availabilityCacheKey); ok {
		t.Fatal("availability cache should be invalidated after a commit")
	}
	if len(notifier.events) != 1 || notifier.events[0].ID != appt.ID {
		t.Fatalf("expected one BookingCreated event for appointment %d, got %v", appt.ID, notifier.events)
	}
}

func TestCreateAppointment_SlotTaken(t *testing.T) {
	store := newFakeApptStore()
	resultCache := cache.New()
	resultCache.Set(availabilityCacheKey, "stale", time.Minute)
	notifier := &captureNotifier{}
	svc := NewBookingService(store, resultCache, notifier)

	if _, err := svc.CreateAppointment(bookingReq()); err != nil {
		t.Fatalf("first booking should succeed: %v", err)
	}
	resultCache.Set(availabilityCacheKey, "stale", time.Minute)

	_, err := svc.CreateAppointment(bookingReq())
	if !errors.Is(err, repository.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// the cache is dropped even when the commit path fails
	if _, ok := resultCache.Get(availabilityCacheKey); ok {
		t.Fatal("availability cache should be invalidated after a conflict")
	}
	if len(notifier.events) != 1 {
		t.Fatalf("expected no event for the failed booking, got %d events", len(notifier.events))
	}
}

func TestCreateAppointment_ConcurrentSameSlot(t *testing.T) {
	store := newFakeApptStore()
	svc := NewBookingService(store, cache.New(), &captureNotifier{})

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateAppointment(bookingReq())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var created, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, repository.ErrSlotTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 || conflicts != attempts-1 {
		t.Fatalf("expected exactly one success, got %d successes and %d conflicts", created, conflicts)
	}
}
