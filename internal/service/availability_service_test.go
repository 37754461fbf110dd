package service

import (
	"errors"
	"testing"
	"time"

	"tavolo/internal/cache"
	"tavolo/internal/db"
)

// 2026-09-07 is a Monday.
var testNow = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

var mondayRule = db.AvailabilityRule{
	ID:                  1,
	DayOfWeek:           1,
	StartTime:           "09:00:00",
	EndTime:             "12:00:00",
	SlotDurationMinutes: 30,
	IsActive:            true,
}

type fakeStore struct {
	rules   []db.AvailabilityRule
	blocked []string
	booked  []db.BookedSlot

	ruleCalls int
}

func (f *fakeStore) GetActiveRules() ([]db.AvailabilityRule, error) {
	f.ruleCalls++
	return f.rules, nil
}

func (f *fakeStore) GetBlockedDatesFrom(from string) ([]string, error) {
	return f.blocked, nil
}

func (f *fakeStore) IsDateBlocked(date string) (bool, error) {
	for _, d := range f.blocked {
		if d == date {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetBookedSlots(from, to string) ([]db.BookedSlot, error) {
	return f.booked, nil
}

func (f *fakeStore) HasActiveAppointmentAt(date, timeOfDay string) (bool, error) {
	for _, b := range f.booked {
		if b.Date == date && b.Time == timeOfDay {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(store *fakeStore, now time.Time) *AvailabilityService {
	svc := NewAvailabilityService(store, store, cache.New(), time.UTC)
	svc.now = func() time.Time { return now }
	return svc
}

func TestGetAvailability_MondayMorning(t *testing.T) {
	store := &fakeStore{rules: []db.AvailabilityRule{mondayRule}}
	svc := newTestService(store, testNow)

	res, err := svc.GetAvailability()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}
	var got []string
	for _, slot := range res.Slots {
		if slot.Date != "2026-09-07" {
			continue
		}
		if !slot.Available {
			t.Fatalf("slot %s should be available", slot.Time)
		}
		if slot.DayName != "Monday" {
			t.Fatalf("expected day name Monday, got %s", slot.DayName)
		}
		got = append(got, slot.Time)
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d slots for 2026-09-07, got %d (%v)", len(expected), len(got), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, expected[i], got[i])
		}
	}

	if res.Timezone != "UTC" {
		t.Fatalf("expected timezone UTC, got %s", res.Timezone)
	}
	if !res.GeneratedAt.Equal(testNow) {
		t.Fatalf("expected generatedAt %v, got %v", testNow, res.GeneratedAt)
	}
}

func TestGetAvailability_WindowCoversThirtyDays(t *testing.T) {
	store := &fakeStore{rules: []db.AvailabilityRule{mondayRule}}
	svc := newTestService(store, testNow)

	res, err := svc.GetAvailability()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mondays in [2026-09-07, 2026-10-07]: Sep 7, 14, 21, 28 and Oct 5.
	if len(res.Slots) != 5*6 {
		t.Fatalf("expected 30 slots over the window, got %d", len(res.Slots))
	}
	last := res.Slots[len(res.Slots)-1]
	if last.Date != "2026-10-05" {
		t.Fatalf("expected final slot date 2026-10-05, got %s", last.Date)
	}
}

func TestGetAvailability_BookedSlotUnavailable(t *testing.T) {
	store := &fakeStore{
		rules:  []db.AvailabilityRule{mondayRule},
		booked: []db.BookedSlot{{Date: "2026-09-07", Time: "10:00:00"}},
	}
	svc := newTestService(store, testNow)

	res, err := svc.GetAvailability()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, slot := range res.Slots {
		if slot.Date != "2026-09-07" {
			continue
		}
		if slot.Time == "10:00" && slot.Available {
			t.Fatal("booked 10:00 slot should be unavailable")
		}
		if slot.Time != "10:00" && !slot.Available {
			t.Fatalf("slot %s should be unaffected by the 10:00 booking", slot.Time)
		}
	}
}

func TestGetAvailability_BlockedDateEmitsNoSlots(t *testing.T) {
	store := &fakeStore{
		rules:   []db.AvailabilityRule{mondayRule},
		blocked: []string{"2026-09-14"},
	}
	svc := newTestService(store, testNow)

	res, err := svc.GetAvailability()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, slot := range res.Slots {
		if slot.Date == "2026-09-14" {
			t.Fatalf("blocked date emitted slot %s", slot.Time)
		}
	}
	// the other four Mondays still emit slots
	if len(res.Slots) != 4*6 {
		t.Fatalf("expected 24 slots, got %d", len(res.Slots))
	}
}

func TestGetAvailability_PastSlotsUnavailable(t *testing.T) {
	store := &fakeStore{rules: []db.AvailabilityRule{mondayRule}}
	// mid-morning on the Monday: 09:00, 09:30, 10:00 are already past
	svc := newTestService(store, time.Date(2026, 9, 7, 10, 5, 0, 0, time.UTC))

	res, err := svc.GetAvailability()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	past := map[string]bool{"09:00": true, "09:30": true, "10:00": true}
	for _, slot := range res.Slots {
		if slot.Date != "2026-09-07" {
			continue
		}
		if past[slot.Time] && slot.Available {
			t.Fatalf("past slot %s should be unavailable", slot.Time)
		}
		if !past[slot.Time] && !slot.Available {
			t.Fatalf("future slot %s should be available", slot.Time)
		}
	}
}

func TestGetAvailability_FirstRulePerDayWins(t *testing.T) {
	second := mondayRule
	second.ID = 2
	second.StartTime = "14:00:00"
	second.EndTime = "18:00:00"
	store := &fakeStore{rules: []db.AvailabilityRule{mondayRule, second}}
	svc := newTestService(store, testNow)

	res, err := svc.GetAvailability()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, slot := range res.Slots {
		if slot.Time >= "12:00" {
			t.Fatalf("slot %s comes from the second rule; only the first should be used", slot.Time)
		}
	}
}

func TestGetAvailability_CacheHit(t *testing.T) {
	store := &fakeStore{rules: []db.AvailabilityRule{mondayRule}}
	svc := newTestService(store, testNow)

	first, err := svc.GetAvailability()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := store.ruleCalls

	second, err := svc.GetAvailability()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.ruleCalls != calls {
		t.Fatal("second call within the TTL should not hit the store")
	}
	if second != first {
		t.Fatal("cache hit should return the identical result")
	}
}

func TestCheckSlot(t *testing.T) {
	store := &fakeStore{
		rules:   []db.AvailabilityRule{mondayRule},
		blocked: []string{"2026-09-14"},
		booked:  []db.BookedSlot{{Date: "2026-09-07", Time: "10:00:00"}},
	}
	svc := newTestService(store, testNow)

	cases := []struct {
		name      string
		date      string
		clock     string
		available bool
		reason    string
	}{
		{"valid open slot", "2026-09-07", "09:30", true, ""},
		{"past slot", "2026-09-06", "10:00", false, "slot is in the past"},
		{"no rule for tuesday", "2026-09-08", "10:00", false, "no availability this day"},
		{"before opening", "2026-09-07", "08:30", false, "outside opening hours"},
		{"end time is exclusive", "2026-09-07", "12:00", false, "outside opening hours"},
		{"blocked date", "2026-09-14", "10:00", false, "date is blocked"},
		{"already booked", "2026-09-07", "10:00", false, "slot already booked"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			check, err := svc.CheckSlot(c.date, c.clock)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if check.Available != c.available {
				t.Fatalf("expected available=%v, got %v (reason %q)", c.available, check.Available, check.Reason)
			}
			if check.Reason != c.reason {
				t.Fatalf("expected reason %q, got %q", c.reason, check.Reason)
			}
		})
	}
}

func TestCheckSlot_InvalidFormat(t *testing.T) {
	store := &fakeStore{rules: []db.AvailabilityRule{mondayRule}}
	svc := newTestService(store, testNow)

	for _, in := range [][2]string{
		{"07/09/2026", "10:00"},
		{"2026-09-07", "10am"},
		{"", "10:00"},
		{"2026-09-07", ""},
		{"2026-9-7", "10:00"},
		{"2026-09-07", "9:30"},
	} {
		if _, err := svc.CheckSlot(in[0], in[1]); !errors.Is(err, ErrInvalidSlotFormat) {
			t.Fatalf("CheckSlot(%q, %q): expected ErrInvalidSlotFormat, got %v", in[0], in[1], err)
		}
	}
}
