package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IsPaymentConfirmed reads the billing collaborator's ledger. Checkout is
// the only caller; billing computation itself lives outside this service.
func (r *paymentRepository) IsPaymentConfirmed(ctx context.Context, appointmentID uuid.UUID) (confirmed bool, err error) {
	start := time.Now()
	defer func() { observe(r.m, "payment_check", start, err) }()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE appointment_id = $1
			AND status = 'confirmed'
		)
	`
	err = r.db.GetContext(ctx, &confirmed, query, appointmentID)
	if err != nil {
		return false, fmt.Errorf("failed to check payment confirmation: %w", err)
	}
	return confirmed, nil
}
