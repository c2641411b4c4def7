package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/model"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStaleStatus is returned when a compare-and-swap status commit
	// loses to a concurrent transition.
	ErrStaleStatus = errors.New("appointment status changed concurrently")
	// ErrOverlapDetected is returned when a placement write is rejected
	// because the store found an overlapping booking at commit time.
	ErrOverlapDetected = errors.New("overlapping booking detected at commit")
)

// All repository interfaces in one file
type (
	// AppointmentRepository is the persistence collaborator for bookings.
	// Placement writes re-check the stored calendar inside the statement,
	// so a race between two operators is rejected rather than committed.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ActiveForDentist returns the dentist's non-terminal bookings
		// intersecting [from, to).
		ActiveForDentist(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
		// UpdatePlacement moves a booking to a new start/end.
		UpdatePlacement(ctx context.Context, id uuid.UUID, start, end time.Time) error
		// TransitionStatus commits the appointment's status and stamp
		// fields if and only if the stored status still equals from.
		TransitionStatus(ctx context.Context, appointment *model.Appointment, from model.AppointmentStatus) error
	}

	// BlockedSlotRepository stores staff time-blocks.
	BlockedSlotRepository interface {
		Create(ctx context.Context, slot *model.BlockedSlot) error
		Get(ctx context.Context, id uuid.UUID) (*model.BlockedSlot, error)
		Delete(ctx context.Context, id uuid.UUID) error
		ForDentist(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*model.BlockedSlot, error)
		ForClinic(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*model.BlockedSlot, error)
	}

	// CounterRepository issues per-clinic, per-business-day queue numbers.
	// Next is an atomic increment owned by the persistence layer; the
	// first caller of a day receives 1 and a number is never reissued.
	CounterRepository interface {
		Next(ctx context.Context, clinicID uuid.UUID, day time.Time) (int, error)
	}

	// PaymentRepository is the read side of the billing collaborator,
	// consulted only by the checkout guard.
	PaymentRepository interface {
		IsPaymentConfirmed(ctx context.Context, appointmentID uuid.UUID) (bool, error)
	}
)
