package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"tavolo/internal/db"

	"github.com/lib/pq"
)

// ErrSlotTaken is returned when an insert loses the race for a slot. The
// partial unique index on (appointment_date, appointment_time) for
// non-cancelled rows is what actually enforces the invariant.
var ErrSlotTaken = errors.New("slot already booked")

const uniqueViolation = "23505"

type AppointmentRepository struct {
	DB *sql.DB
}

func NewAppointmentRepository(database *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{DB: database}
}

// HasActiveAppointmentAt reports whether a non-cancelled appointment exists at
// exactly the given (date, time). Used as a fast pre-check; never a safety
// guarantee on its own.
func (r *AppointmentRepository) HasActiveAppointmentAt(date, timeOfDay string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE appointment_date = $1::date
				AND appointment_time = $2::time
				AND status <> 'cancelled'
		)`, date, timeOfDay).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking existing appointment: %w", err)
	}
	return exists, nil
}

// CreateAppointment inserts the appointment inside a transaction. A unique
// violation on the slot index rolls back and returns ErrSlotTaken, so of two
// concurrent commits for the same slot at most one succeeds.
func (r *AppointmentRepository) CreateAppointment(appt *db.Appointment) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	query := `
		INSERT INTO appointments
			(customer_name, customer_email, customer_phone, appointment_date, appointment_time, service_type, notes, status)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8)
		RETURNING id, created_at`
	err = tx.QueryRow(query,
		appt.CustomerName,
		appt.CustomerEmail,
		appt.CustomerPhone,
		appt.AppointmentDate,
		appt.AppointmentTime,
		appt.ServiceType,
		appt.Notes,
		appt.Status,
	).Scan(&appt.ID, &appt.CreatedAt)
	if err != nil {
		tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("error inserting appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetAppointmentByID(id int) (*db.Appointment, error) {
	var appt db.Appointment
	err := r.DB.QueryRow(`
		SELECT id, customer_name, customer_email, customer_phone,
			to_char(appointment_date, 'YYYY-MM-DD'),
			to_char(appointment_time, 'HH24:MI:SS'),
			service_type, notes, status, reminder_sent, created_at
		FROM appointments
		WHERE id = $1`, id).Scan(
		&appt.ID, &appt.CustomerName, &appt.CustomerEmail, &appt.CustomerPhone,
		&appt.AppointmentDate, &appt.AppointmentTime,
		&appt.ServiceType, &appt.Notes, &appt.Status, &appt.ReminderSent, &appt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying appointment %d: %w", id, err)
	}
	return &appt, nil
}

// CancelAppointment sets the status to cancelled and returns the updated row.
func (r *AppointmentRepository) CancelAppointment(id int) (*db.Appointment, error) {
	result, err := r.DB.Exec(`
		UPDATE appointments SET status = 'cancelled'
		WHERE id = $1 AND status <> 'cancelled'`, id)
	if err != nil {
		return nil, fmt.Errorf("error cancelling appointment %d: %w", id, err)
	}
	if err := requireRowAffected(result); err != nil {
		return nil, err
	}
	return r.GetAppointmentByID(id)
}

func (r *AppointmentRepository) ListAppointments(date, status string) ([]db.Appointment, error) {
	query := `
		SELECT id, customer_name, customer_email, customer_phone,
			to_char(appointment_date, 'YYYY-MM-DD'),
			to_char(appointment_time, 'HH24:MI:SS'),
			service_type, notes, status, reminder_sent, created_at
		FROM appointments
		WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += " AND appointment_date = $" + strconv.Itoa(idx) + "::date"
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY appointment_date, appointment_time"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying appointments: %w", err)
	}
	defer rows.Close()

	var appts []db.Appointment
	for rows.Next() {
		var appt db.Appointment
		if err := rows.Scan(
			&appt.ID, &appt.CustomerName, &appt.CustomerEmail, &appt.CustomerPhone,
			&appt.AppointmentDate, &appt.AppointmentTime,
			&appt.ServiceType, &appt.Notes, &appt.Status, &appt.ReminderSent, &appt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning appointment: %w", err)
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

// GetDueReminders returns confirmed appointments starting within the next 24
// hours whose reminder has not been sent yet.
func (r *AppointmentRepository) GetDueReminders() ([]db.Appointment, error) {
	query := `
		SELECT id, customer_name, customer_email, customer_phone,
			to_char(appointment_date, 'YYYY-MM-DD'),
			to_char(appointment_time, 'HH24:MI:SS'),
			service_type, notes, status, reminder_sent, created_at
		FROM appointments
		WHERE status = 'confirmed'
			AND reminder_sent = FALSE
			AND (appointment_date + appointment_time) BETWEEN NOW() AND NOW() + interval '24 hours'
		ORDER BY appointment_date, appointment_time`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying due reminders: %w", err)
	}
	defer rows.Close()

	var appts []db.Appointment
	for rows.Next() {
		var appt db.Appointment
		if err := rows.Scan(
			&appt.ID, &appt.CustomerName, &appt.CustomerEmail, &appt.CustomerPhone,
			&appt.AppointmentDate, &appt.AppointmentTime,
			&appt.ServiceType, &appt.Notes, &appt.Status, &appt.ReminderSent, &appt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning due reminder: %w", err)
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func (r *AppointmentRepository) MarkReminderSent(id int) error {
	_, err := r.DB.Exec(`UPDATE appointments SET reminder_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error marking reminder sent for appointment %d: %w", id, err)
	}
	return nil
}
