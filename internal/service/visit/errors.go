package visit

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/model"
)

// InvalidTransitionError rejects a move the lifecycle graph does not
// permit, including any move out of a terminal state.
type InvalidTransitionError struct {
	From model.AppointmentStatus
	To   model.AppointmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition appointment from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) StatusCode() int { return http.StatusConflict }

// PaymentRequiredError blocks checkout until the billing collaborator
// confirms payment. The appointment's status is left untouched.
type PaymentRequiredError struct {
	AppointmentID uuid.UUID
}

func (e *PaymentRequiredError) Error() string {
	return fmt.Sprintf("payment not confirmed for appointment %s", e.AppointmentID)
}

func (e *PaymentRequiredError) StatusCode() int { return http.StatusPaymentRequired }

// AutoTransitionError rejects machine-triggered moves on bookings staff
// have not handled yet; only an explicit staff action may advance them.
type AutoTransitionError struct {
	From model.AppointmentStatus
}

func (e *AutoTransitionError) Error() string {
	return fmt.Sprintf("appointment in %s state requires an explicit staff action", e.From)
}

func (e *AutoTransitionError) StatusCode() int { return http.StatusConflict }
