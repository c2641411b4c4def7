package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/repository"
)

const blockedSlotColumns = `
	id, clinic_id, dentist_id, start_time, end_time, reason,
	created_at, updated_at`

func (r *blockedSlotRepository) Create(ctx context.Context, slot *model.BlockedSlot) (err error) {
	start := time.Now()
	defer func() { observe(r.m, "blocked_slot_create", start, err) }()

	query := `
		INSERT INTO blocked_slots (
			id, clinic_id, dentist_id, start_time, end_time, reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = time.Now()

	_, err = r.db.ExecContext(ctx, query,
		slot.ID,
		slot.ClinicID,
		slot.DentistID,
		slot.StartTime,
		slot.EndTime,
		slot.Reason,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create blocked slot: %w", err)
	}
	return nil
}

func (r *blockedSlotRepository) Get(ctx context.Context, id uuid.UUID) (*model.BlockedSlot, error) {
	query := `SELECT ` + blockedSlotColumns + ` FROM blocked_slots WHERE id = $1`

	var slot model.BlockedSlot
	err := r.db.GetContext(ctx, &slot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blocked slot: %w", err)
	}
	return &slot, nil
}

func (r *blockedSlotRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { observe(r.m, "blocked_slot_delete", start, err) }()

	result, err := r.db.ExecContext(ctx, `DELETE FROM blocked_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blocked slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *blockedSlotRepository) ForDentist(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*model.BlockedSlot, error) {
	query := `
		SELECT ` + blockedSlotColumns + `
		FROM blocked_slots
		WHERE dentist_id = $1
		AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC
	`
	var slots []*model.BlockedSlot
	err := r.db.SelectContext(ctx, &slots, query, dentistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked slots: %w", err)
	}
	return slots, nil
}

func (r *blockedSlotRepository) ForClinic(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*model.BlockedSlot, error) {
	query := `
		SELECT ` + blockedSlotColumns + `
		FROM blocked_slots
		WHERE clinic_id = $1
		AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC
	`
	var slots []*model.BlockedSlot
	err := r.db.SelectContext(ctx, &slots, query, clinicID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked slots: %w", err)
	}
	return slots, nil
}
