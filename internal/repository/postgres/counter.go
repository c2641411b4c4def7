package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Next issues the next queue number for the clinic's business day. The
// upsert makes the increment atomic inside the store, so concurrent
// check-ins never share a number and the sequence restarts at 1 each day.
func (r *counterRepository) Next(ctx context.Context, clinicID uuid.UUID, day time.Time) (value int, err error) {
	start := time.Now()
	defer func() { observe(r.m, "queue_counter_next", start, err) }()

	query := `
		INSERT INTO checkin_counters (clinic_id, day, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (clinic_id, day)
		DO UPDATE SET value = checkin_counters.value + 1
		RETURNING value
	`
	err = r.db.GetContext(ctx, &value, query, clinicID, day.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("failed to issue queue number: %w", err)
	}
	return value, nil
}
