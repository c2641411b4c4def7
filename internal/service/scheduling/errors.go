package scheduling

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/smilecare/practice-api/internal/model"
)

// ErrInvalidRange rejects any proposal whose start is not strictly
// before its end.
var ErrInvalidRange = errors.New("booking start must be before end")

// PastSchedulingError rejects bookings placed before the wall clock at
// the moment of the request. It is never overridable.
type PastSchedulingError struct {
	Start time.Time
	Now   time.Time
}

func (e *PastSchedulingError) Error() string {
	return fmt.Sprintf("cannot schedule in the past: %s is before %s", e.Start.Format(time.RFC3339), e.Now.Format(time.RFC3339))
}

func (e *PastSchedulingError) StatusCode() int { return http.StatusUnprocessableEntity }

// BlockedSlotConflict rejects bookings overlapping a staff time-block.
// Blocked slots always win regardless of their reason.
type BlockedSlotConflict struct {
	Slot *model.BlockedSlot
}

func (e *BlockedSlotConflict) Error() string {
	if e.Slot == nil {
		return "range overlaps a blocked slot"
	}
	return fmt.Sprintf("range overlaps a blocked slot from %s to %s",
		e.Slot.StartTime.Format(time.RFC3339), e.Slot.EndTime.Format(time.RFC3339))
}

func (e *BlockedSlotConflict) StatusCode() int { return http.StatusConflict }

// DoubleBookingConflict rejects bookings overlapping another non-terminal
// appointment for the same dentist. The conflicting patient is surfaced
// so the operator can see who holds the slot.
type DoubleBookingConflict struct {
	Appointment *model.Appointment
}

func (e *DoubleBookingConflict) Error() string {
	if e.Appointment == nil {
		return "range overlaps an existing appointment"
	}
	return fmt.Sprintf("range overlaps an existing appointment for %s", e.Appointment.PatientName)
}

func (e *DoubleBookingConflict) StatusCode() int { return http.StatusConflict }

// PatientName returns the label of the patient holding the conflicting
// slot, empty when the rival could not be re-read.
func (e *DoubleBookingConflict) PatientName() string {
	if e.Appointment == nil {
		return ""
	}
	return e.Appointment.PatientName
}
