package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/repository"
)

const appointmentColumns = `
	id, clinic_id, dentist_id, patient_id, patient_name,
	start_time, end_time, treatment, room, status,
	check_in_time, check_out_time, queue_number, cancel_reason,
	created_at, updated_at`

// terminalStatuses mirrors the state machine's terminal set; rows in
// these states no longer occupy calendar time.
const terminalStatuses = `('completed', 'cancelled', 'no_show')`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) (err error) {
	start := time.Now()
	defer func() { observe(r.m, "appointment_create", start, err) }()

	// The insert re-checks the dentist's calendar in the same statement,
	// so two operators racing for the same range cannot both commit.
	query := `
		INSERT INTO appointments (
			id, clinic_id, dentist_id, patient_id, patient_name,
			start_time, end_time, treatment, room, status,
			created_at, updated_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE dentist_id = $3
			AND status NOT IN ` + terminalStatuses + `
			AND start_time < $7 AND end_time > $6
		)
		AND NOT EXISTS (
			SELECT 1 FROM blocked_slots
			WHERE dentist_id = $3
			AND start_time < $7 AND end_time > $6
		)
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.ClinicID,
		appointment.DentistID,
		appointment.PatientID,
		appointment.PatientName,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Treatment,
		appointment.Room,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrOverlapDetected
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE clinic_id = $1`
	args := []interface{}{filters.ClinicID}
	argCount := 2

	if filters.DentistID != nil {
		query += fmt.Sprintf(" AND dentist_id = $%d", argCount)
		args = append(args, *filters.DentistID)
		argCount++
	}
	if filters.PatientID != nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, *filters.PatientID)
		argCount++
	}
	if filters.Status != nil {
		// Match legacy spellings too, not just the canonical status.
		forms := filters.Status.Forms()
		statuses := make([]string, len(forms))
		for i, f := range forms {
			statuses[i] = string(f)
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", argCount)
		args = append(args, pq.Array(statuses))
		argCount++
	}
	if filters.From != nil {
		query += fmt.Sprintf(" AND end_time > $%d", argCount)
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, *filters.To)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ActiveForDentist(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE dentist_id = $1
		AND status NOT IN ` + terminalStatuses + `
		AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, dentistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get dentist appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdatePlacement(ctx context.Context, id uuid.UUID, start, end time.Time) (err error) {
	began := time.Now()
	defer func() { observe(r.m, "appointment_move", began, err) }()

	// Moves may be confirmed into a known double-booking by the
	// operator, so only the non-overridable blocked-slot rule is
	// re-checked at write time.
	query := `
		UPDATE appointments a
		SET start_time = $2, end_time = $3, updated_at = $4
		WHERE a.id = $1
		AND NOT EXISTS (
			SELECT 1 FROM blocked_slots b
			WHERE b.dentist_id = a.dentist_id
			AND b.start_time < $3 AND b.end_time > $2
		)
	`
	result, err := r.db.ExecContext(ctx, query, id, start, end, time.Now())
	if err != nil {
		return fmt.Errorf("failed to move appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing row from a lost placement race.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return repository.ErrOverlapDetected
	}
	return nil
}

func (r *appointmentRepository) TransitionStatus(ctx context.Context, appointment *model.Appointment, from model.AppointmentStatus) (err error) {
	start := time.Now()
	defer func() { observe(r.m, "appointment_transition", start, err) }()

	query := `
		UPDATE appointments
		SET status = $2, check_in_time = $3, check_out_time = $4,
		    queue_number = $5, cancel_reason = $6, updated_at = $7
		WHERE id = $1 AND status = $8
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.Status,
		appointment.CheckInTime,
		appointment.CheckOutTime,
		appointment.QueueNumber,
		appointment.CancelReason,
		appointment.UpdatedAt,
		from,
	)
	if err != nil {
		return fmt.Errorf("failed to transition appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		if _, getErr := r.Get(ctx, appointment.ID); getErr != nil {
			return getErr
		}
		return repository.ErrStaleStatus
	}
	return nil
}
