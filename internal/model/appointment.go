package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusCheckedIn   AppointmentStatus = "checked_in"
	AppointmentStatusInTreatment AppointmentStatus = "in_treatment"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusNoShow      AppointmentStatus = "no_show"
)

// UI-facing synonyms for an unconfirmed booking. They normalize to
// scheduled before any transition check.
const (
	AppointmentStatusPending     AppointmentStatus = "pending"
	AppointmentStatusUnconfirmed AppointmentStatus = "unconfirmed"
)

// Normalize maps display synonyms onto the canonical status set.
func (s AppointmentStatus) Normalize() AppointmentStatus {
	switch s {
	case AppointmentStatusPending, AppointmentStatusUnconfirmed:
		return AppointmentStatusScheduled
	default:
		return s
	}
}

// Forms returns every stored spelling that normalizes to s, so status
// filters also match legacy rows written before normalization.
func (s AppointmentStatus) Forms() []AppointmentStatus {
	canonical := s.Normalize()
	forms := []AppointmentStatus{canonical}
	for _, synonym := range []AppointmentStatus{AppointmentStatusPending, AppointmentStatusUnconfirmed} {
		if synonym.Normalize() == canonical {
			forms = append(forms, synonym)
		}
	}
	return forms
}

// IsTerminal reports whether no further transition is permitted.
func (s AppointmentStatus) IsTerminal() bool {
	switch s.Normalize() {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is a known status, canonical or synonym.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCheckedIn,
		AppointmentStatusInTreatment, AppointmentStatusCompleted, AppointmentStatusCancelled,
		AppointmentStatusNoShow, AppointmentStatusPending, AppointmentStatusUnconfirmed:
		return true
	default:
		return false
	}
}

// statusGraph is the visit lifecycle transition table. Both sides are
// canonical statuses.
var statusGraph = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {
		AppointmentStatusConfirmed,
		AppointmentStatusCheckedIn,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusConfirmed: {
		AppointmentStatusCheckedIn,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusCheckedIn: {
		AppointmentStatusInTreatment,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
	},
	AppointmentStatusInTreatment: {
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
	},
}

// CanTransition reports whether the lifecycle permits moving from s to
// target. Terminal states permit nothing.
func (s AppointmentStatus) CanTransition(target AppointmentStatus) bool {
	from, to := s.Normalize(), target.Normalize()
	for _, allowed := range statusGraph[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Appointment is a scheduled occupation of one dentist's time by one
// patient. Cancellation is a status, not a deletion.
type Appointment struct {
	Base
	ClinicID     uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	DentistID    uuid.UUID         `db:"dentist_id" json:"dentist_id"`
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	PatientName  string            `db:"patient_name" json:"patient_name"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	Treatment    string            `db:"treatment" json:"treatment"`
	Room         *string           `db:"room" json:"room,omitempty"`
	Status       AppointmentStatus `db:"status" json:"status"`
	CheckInTime  *time.Time        `db:"check_in_time" json:"check_in_time,omitempty"`
	CheckOutTime *time.Time        `db:"check_out_time" json:"check_out_time,omitempty"`
	QueueNumber  *int              `db:"queue_number" json:"queue_number,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// Duration returns the booked chair time.
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

type CreateAppointmentRequest struct {
	ClinicID    uuid.UUID `json:"clinic_id" binding:"required"`
	DentistID   uuid.UUID `json:"dentist_id" binding:"required"`
	PatientID   uuid.UUID `json:"patient_id" binding:"required"`
	PatientName string    `json:"patient_name" binding:"required,max=200"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Treatment   string    `json:"treatment" binding:"required,max=200"`
	Room        *string   `json:"room" binding:"omitempty,max=50"`
}

type RescheduleRequest struct {
	TargetDay  time.Time `json:"target_day" binding:"required"`
	TargetHour *int      `json:"target_hour" binding:"omitempty,min=0,max=23"`
	Confirmed  bool      `json:"confirmed"`
}

type TransitionRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
	Reason *string           `json:"reason" binding:"omitempty,max=500"`
	// Auto marks a machine-triggered transition; those are rejected for
	// bookings that staff have not handled yet.
	Auto bool `json:"auto"`
}

type AppointmentFilters struct {
	ClinicID  uuid.UUID
	DentistID *uuid.UUID
	PatientID *uuid.UUID
	Status    *AppointmentStatus
	From      *time.Time
	To        *time.Time
}
