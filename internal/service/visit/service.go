package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/notification"
	"github.com/smilecare/practice-api/internal/repository"
	"github.com/smilecare/practice-api/pkg/metrics"
)

// TransitionOptions qualify a transition request.
type TransitionOptions struct {
	// Reason is recorded on cancellation and no-show.
	Reason *string
	// Auto marks a machine-triggered transition.
	Auto bool
}

// TransitionResult reports a committed transition. QueueNumber is set
// when this transition performed the check-in, for receipt display.
type TransitionResult struct {
	Appointment *model.Appointment `json:"appointment"`
	QueueNumber *int               `json:"queue_number,omitempty"`
}

// Service drives each appointment through the operational visit
// lifecycle: arrival, check-in, treatment, checkout. Calendar placement
// is the scheduling engine's business, not ours.
type Service struct {
	appointments repository.AppointmentRepository
	counters     repository.CounterRepository
	payments     repository.PaymentRepository
	notifier     notification.Publisher
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(appointments repository.AppointmentRepository, counters repository.CounterRepository, payments repository.PaymentRepository, notifier notification.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		appointments: appointments,
		counters:     counters,
		payments:     payments,
		notifier:     notifier,
		metrics:      m,
		now:          time.Now,
	}
}

var transitionEvents = map[model.AppointmentStatus]string{
	model.AppointmentStatusConfirmed:   "appointment_confirmed",
	model.AppointmentStatusCheckedIn:   "patient_checked_in",
	model.AppointmentStatusInTreatment: "treatment_started",
	model.AppointmentStatusCompleted:   "visit_completed",
	model.AppointmentStatusCancelled:   "appointment_cancelled",
	model.AppointmentStatusNoShow:      "appointment_no_show",
}

// Transition advances one appointment to target, running the lifecycle
// guards and side effects, and commits with a compare-and-swap on the
// prior status so two concurrent requests cannot both succeed from the
// same state.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target model.AppointmentStatus, opts TransitionOptions) (*TransitionResult, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	from := appointment.Status
	target = target.Normalize()

	if !target.IsValid() || !from.CanTransition(target) {
		s.countTransition(target, "rejected")
		return nil, &InvalidTransitionError{From: from, To: target}
	}

	// Unhandled bookings advance only on explicit staff action; the
	// clock-based affordance lives in the UI, not here.
	if opts.Auto {
		switch from.Normalize() {
		case model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed:
			s.countTransition(target, "rejected")
			return nil, &AutoTransitionError{From: from}
		}
	}

	result := &TransitionResult{Appointment: appointment}

	switch target {
	case model.AppointmentStatusCheckedIn:
		now := s.now()
		appointment.CheckInTime = &now
		// The number sticks for the rest of the visit; later
		// transitions never reassign it. Drawing it before the CAS
		// commit means a lost race burns a number: the day's sequence
		// stays strictly increasing and unique, but may have gaps.
		if appointment.QueueNumber == nil {
			number, err := s.counters.Next(ctx, appointment.ClinicID, now)
			if err != nil {
				return nil, fmt.Errorf("failed to assign queue number: %w", err)
			}
			appointment.QueueNumber = &number
			result.QueueNumber = &number
			if s.metrics != nil {
				s.metrics.QueueNumbersIssued.Inc()
			}
		}

	case model.AppointmentStatusCompleted:
		confirmed, err := s.payments.IsPaymentConfirmed(ctx, appointment.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check payment: %w", err)
		}
		if !confirmed {
			s.countTransition(target, "payment_required")
			return nil, &PaymentRequiredError{AppointmentID: appointment.ID}
		}
		now := s.now()
		appointment.CheckOutTime = &now

	case model.AppointmentStatusCancelled, model.AppointmentStatusNoShow:
		appointment.CancelReason = opts.Reason
	}

	appointment.Status = target

	if err := s.appointments.TransitionStatus(ctx, appointment, from); err != nil {
		s.countTransition(target, "rejected")
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	s.countTransition(target, "committed")
	if s.notifier != nil {
		if event, ok := transitionEvents[target]; ok {
			_ = s.notifier.Publish(ctx, event, result)
		}
	}
	return result, nil
}

func (s *Service) countTransition(target model.AppointmentStatus, outcome string) {
	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(string(target), outcome).Inc()
	}
}
