package service

import (
	"errors"
	"fmt"
	"time"

	"tavolo/internal/cache"
	"tavolo/internal/db"
	"tavolo/internal/entities"
	"tavolo/internal/schedule"

	"golang.org/x/sync/errgroup"
)

const (
	availabilityCacheKey = "availability:slots"
	availabilityCacheTTL = 5 * time.Minute

	// rolling window: today through today+windowDays inclusive
	windowDays = 30
)

// ErrInvalidSlotFormat is returned when a requested date or time string is
// malformed. Handlers map it to HTTP 400.
var ErrInvalidSlotFormat = errors.New("invalid date or time format")

// AvailabilityStore is the read-only view of the rule store.
type AvailabilityStore interface {
	GetActiveRules() ([]db.AvailabilityRule, error)
	GetBlockedDatesFrom(from string) ([]string, error)
	IsDateBlocked(date string) (bool, error)
	GetBookedSlots(from, to string) ([]db.BookedSlot, error)
}

// SlotLookup checks for an existing non-cancelled appointment at one slot.
type SlotLookup interface {
	HasActiveAppointmentAt(date, timeOfDay string) (bool, error)
}

type AvailabilityService struct {
	store AvailabilityStore
	appts SlotLookup
	cache *cache.Cache
	loc   *time.Location
	now   func() time.Time
}

func NewAvailabilityService(store AvailabilityStore, appts SlotLookup, resultCache *cache.Cache, loc *time.Location) *AvailabilityService {
	return &AvailabilityService{
		store: store,
		appts: appts,
		cache: resultCache,
		loc:   loc,
		now:   time.Now,
	}
}

// GetAvailability returns every slot in the rolling window, served from the
// result cache when a fresh entry exists.
func (s *AvailabilityService) GetAvailability() (*entities.AvailabilityResult, error) {
	if data, ok := s.cache.Get(availabilityCacheKey); ok {
		if res, ok := data.(*entities.AvailabilityResult); ok {
			return res, nil
		}
	}

	res, err := s.aggregate(s.now().In(s.loc))
	if err != nil {
		return nil, err
	}
	s.cache.Set(availabilityCacheKey, res, availabilityCacheTTL)
	return res, nil
}

func (s *AvailabilityService) aggregate(now time.Time) (*entities.AvailabilityResult, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	from := today.Format("2006-01-02")
	to := today.AddDate(0, 0, windowDays).Format("2006-01-02")

	var (
		rules   []db.AvailabilityRule
		blocked []string
		booked  []db.BookedSlot
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		rules, err = s.store.GetActiveRules()
		return err
	})
	g.Go(func() (err error) {
		blocked, err = s.store.GetBlockedDatesFrom(from)
		return err
	})
	g.Go(func() (err error) {
		booked, err = s.store.GetBookedSlots(from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error loading availability inputs: %w", err)
	}

	blockedSet := make(map[string]struct{}, len(blocked))
	for _, d := range blocked {
		blockedSet[d] = struct{}{}
	}
	bookedSet := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		bookedSet[b.Date+"_"+b.Time] = struct{}{}
	}

	slots := make([]entities.TimeSlot, 0, 128)
	for i := 0; i <= windowDays; i++ {
		day := today.AddDate(0, 0, i)
		dateStr := day.Format("2006-01-02")

		if _, ok := blockedSet[dateStr]; ok {
			continue
		}
		rule := firstRuleFor(rules, int(day.Weekday()))
		if rule == nil {
			continue
		}

		times, err := schedule.GenerateSlots(rule.StartTime, rule.EndTime, rule.SlotDurationMinutes)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", rule.ID, err)
		}
		for _, clock := range times {
			mins, err := schedule.ParseClock(clock)
			if err != nil {
				return nil, err
			}
			slotTime := time.Date(day.Year(), day.Month(), day.Day(), mins/60, mins%60, 0, 0, s.loc)

			_, taken := bookedSet[dateStr+"_"+clock+":00"]
			slots = append(slots, entities.TimeSlot{
				Date:      dateStr,
				Time:      clock,
				Available: !taken && !slotTime.Before(now),
				DayName:   day.Weekday().String(),
			})
		}
	}

	return &entities.AvailabilityResult{
		Slots:       slots,
		Timezone:    s.loc.String(),
		GeneratedAt: now,
	}, nil
}

// CheckSlot re-derives validity for one (date, time) pair against current
// rules. It never consults the result cache: a cached aggregate may be up to
// five minutes stale and booking decisions must not rely on it.
func (s *AvailabilityService) CheckSlot(date, timeOfDay string) (*entities.SlotCheck, error) {
	// the reference layouts alone would accept unpadded values like "9:30"
	if !entities.ValidDateFormat(date) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlotFormat, date)
	}
	if !entities.ValidTimeFormat(timeOfDay) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlotFormat, timeOfDay)
	}
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlotFormat, date)
	}
	clock, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlotFormat, timeOfDay)
	}

	slotTime := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, s.loc)
	if slotTime.Before(s.now().In(s.loc)) {
		return &entities.SlotCheck{Reason: "slot is in the past"}, nil
	}

	rules, err := s.store.GetActiveRules()
	if err != nil {
		return nil, fmt.Errorf("error loading availability rules: %w", err)
	}
	rule := firstRuleFor(rules, int(day.Weekday()))
	if rule == nil {
		return &entities.SlotCheck{Reason: "no availability this day"}, nil
	}

	slotMins := clock.Hour()*60 + clock.Minute()
	start, err := schedule.ParseClock(rule.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := schedule.ParseClock(rule.EndTime)
	if err != nil {
		return nil, err
	}
	if slotMins < start || slotMins >= end {
		return &entities.SlotCheck{Reason: "outside opening hours"}, nil
	}

	isBlocked, err := s.store.IsDateBlocked(date)
	if err != nil {
		return nil, fmt.Errorf("error checking blocked dates: %w", err)
	}
	if isBlocked {
		return &entities.SlotCheck{Reason: "date is blocked"}, nil
	}

	taken, err := s.appts.HasActiveAppointmentAt(date, timeOfDay+":00")
	if err != nil {
		return nil, fmt.Errorf("error checking existing appointments: %w", err)
	}
	if taken {
		return &entities.SlotCheck{Reason: "slot already booked"}, nil
	}

	return &entities.SlotCheck{Available: true}, nil
}

func firstRuleFor(rules []db.AvailabilityRule, weekday int) *db.AvailabilityRule {
	for i := range rules {
		if rules[i].DayOfWeek == weekday {
			return &rules[i]
		}
	}
	return nil
}
