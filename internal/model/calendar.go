package model

import "time"

type CalendarViewKind string

const (
	CalendarViewDay   CalendarViewKind = "day"
	CalendarViewWeek  CalendarViewKind = "week"
	CalendarViewMonth CalendarViewKind = "month"
)

func (k CalendarViewKind) IsValid() bool {
	switch k {
	case CalendarViewDay, CalendarViewWeek, CalendarViewMonth:
		return true
	default:
		return false
	}
}

// CalendarStats aggregates a view window. Pending counts scheduled
// bookings still awaiting confirmation (including the pending/unconfirmed
// display synonyms).
type CalendarStats struct {
	Total              int `json:"total"`
	Confirmed          int `json:"confirmed"`
	Pending            int `json:"pending"`
	Cancelled          int `json:"cancelled"`
	UtilizationPercent int `json:"utilization_percent"`
}

// CalendarView is a derived projection of one window of a clinic
// calendar. It is never persisted.
type CalendarView struct {
	Kind         CalendarViewKind `json:"kind"`
	WindowStart  time.Time        `json:"window_start"`
	WindowEnd    time.Time        `json:"window_end"`
	Appointments []*Appointment   `json:"appointments"`
	BlockedSlots []*BlockedSlot   `json:"blocked_slots"`
	Stats        CalendarStats    `json:"stats"`
}

// RescheduleProposal is the transient value driving the confirm/cancel
// exchange of a drag move. ConflictWith names the double-booked patient
// when the preview found one; the operator may still confirm.
type RescheduleProposal struct {
	AppointmentID string     `json:"appointment_id"`
	OriginalStart time.Time  `json:"original_start"`
	OriginalEnd   time.Time  `json:"original_end"`
	NewStart      time.Time  `json:"new_start"`
	NewEnd        time.Time  `json:"new_end"`
	NoOp          bool       `json:"no_op"`
	ConflictWith  *string    `json:"conflict_with,omitempty"`
}
