package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"tavolo/internal/db"
)

type AvailabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(database *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{DB: database}
}

// GetActiveRules returns the active weekly rules ordered by day of week. When
// several active rules exist for the same day the first one wins downstream.
func (r *AvailabilityRepository) GetActiveRules() ([]db.AvailabilityRule, error) {
	query := `
		SELECT id, day_of_week,
			to_char(start_time, 'HH24:MI:SS'),
			to_char(end_time, 'HH24:MI:SS'),
			slot_duration_minutes, is_active
		FROM availability_rules
		WHERE is_active = TRUE
		ORDER BY day_of_week, id`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying availability rules: %w", err)
	}
	defer rows.Close()

	var rules []db.AvailabilityRule
	for rows.Next() {
		var rule db.AvailabilityRule
		if err := rows.Scan(&rule.ID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime, &rule.SlotDurationMinutes, &rule.IsActive); err != nil {
			return nil, fmt.Errorf("error scanning availability rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// GetBlockedDatesFrom returns blocked dates on or after the given date.
func (r *AvailabilityRepository) GetBlockedDatesFrom(from string) ([]string, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM-DD')
		FROM blocked_dates
		WHERE date >= $1::date
		ORDER BY date`

	rows, err := r.DB.Query(query, from)
	if err != nil {
		return nil, fmt.Errorf("error querying blocked dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("error scanning blocked date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *AvailabilityRepository) IsDateBlocked(date string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS (SELECT 1 FROM blocked_dates WHERE date = $1::date)`, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking blocked date: %w", err)
	}
	return exists, nil
}

// GetBookedSlots returns the (date, time) keys of non-cancelled appointments
// between from and to inclusive.
func (r *AvailabilityRepository) GetBookedSlots(from, to string) ([]db.BookedSlot, error) {
	query := `
		SELECT to_char(appointment_date, 'YYYY-MM-DD'),
			to_char(appointment_time, 'HH24:MI:SS')
		FROM appointments
		WHERE status <> 'cancelled'
			AND appointment_date BETWEEN $1::date AND $2::date`

	rows, err := r.DB.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying booked slots: %w", err)
	}
	defer rows.Close()

	var slots []db.BookedSlot
	for rows.Next() {
		var s db.BookedSlot
		if err := rows.Scan(&s.Date, &s.Time); err != nil {
			return nil, fmt.Errorf("error scanning booked slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// Admin CRUD for the rule store.

func (r *AvailabilityRepository) ListRules() ([]db.AvailabilityRule, error) {
	query := `
		SELECT id, day_of_week,
			to_char(start_time, 'HH24:MI:SS'),
			to_char(end_time, 'HH24:MI:SS'),
			slot_duration_minutes, is_active
		FROM availability_rules
		ORDER BY day_of_week, id`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying availability rules: %w", err)
	}
	defer rows.Close()

	var rules []db.AvailabilityRule
	for rows.Next() {
		var rule db.AvailabilityRule
		if err := rows.Scan(&rule.ID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime, &rule.SlotDurationMinutes, &rule.IsActive); err != nil {
			return nil, fmt.Errorf("error scanning availability rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *AvailabilityRepository) CreateRule(rule *db.AvailabilityRule) error {
	query := `
		INSERT INTO availability_rules (day_of_week, start_time, end_time, slot_duration_minutes, is_active)
		VALUES ($1, $2::time, $3::time, $4, $5)
		RETURNING id`
	return r.DB.QueryRow(query, rule.DayOfWeek, rule.StartTime, rule.EndTime, rule.SlotDurationMinutes, rule.IsActive).Scan(&rule.ID)
}

func (r *AvailabilityRepository) DeleteRule(id int) error {
	result, err := r.DB.Exec(`DELETE FROM availability_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting availability rule: %w", err)
	}
	return requireRowAffected(result)
}

func (r *AvailabilityRepository) ListBlockedDates() ([]db.BlockedDate, error) {
	query := `
		SELECT id, to_char(date, 'YYYY-MM-DD'), COALESCE(reason, '')
		FROM blocked_dates
		ORDER BY date`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying blocked dates: %w", err)
	}
	defer rows.Close()

	var dates []db.BlockedDate
	for rows.Next() {
		var bd db.BlockedDate
		if err := rows.Scan(&bd.ID, &bd.Date, &bd.Reason); err != nil {
			return nil, fmt.Errorf("error scanning blocked date: %w", err)
		}
		dates = append(dates, bd)
	}
	return dates, rows.Err()
}

func (r *AvailabilityRepository) CreateBlockedDate(bd *db.BlockedDate) error {
	query := `INSERT INTO blocked_dates (date, reason) VALUES ($1::date, $2) RETURNING id`
	return r.DB.QueryRow(query, bd.Date, bd.Reason).Scan(&bd.ID)
}

func (r *AvailabilityRepository) DeleteBlockedDate(id int) error {
	result, err := r.DB.Exec(`DELETE FROM blocked_dates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting blocked date: %w", err)
	}
	return requireRowAffected(result)
}

// ErrNotFound is returned when a row targeted by an update or delete does not exist.
var ErrNotFound = errors.New("not found")

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
