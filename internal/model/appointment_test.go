package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusNormalize(t *testing.T) {
	assert.Equal(t, AppointmentStatusScheduled, AppointmentStatusPending.Normalize())
	assert.Equal(t, AppointmentStatusScheduled, AppointmentStatusUnconfirmed.Normalize())
	assert.Equal(t, AppointmentStatusConfirmed, AppointmentStatusConfirmed.Normalize())
}

func TestStatusCanTransition(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{AppointmentStatusScheduled, AppointmentStatusConfirmed, true},
		{AppointmentStatusScheduled, AppointmentStatusCheckedIn, true},
		{AppointmentStatusScheduled, AppointmentStatusNoShow, true},
		{AppointmentStatusScheduled, AppointmentStatusInTreatment, false},
		{AppointmentStatusScheduled, AppointmentStatusCompleted, false},
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusUnconfirmed, AppointmentStatusCheckedIn, true},
		{AppointmentStatusConfirmed, AppointmentStatusCheckedIn, true},
		{AppointmentStatusConfirmed, AppointmentStatusInTreatment, false},
		{AppointmentStatusCheckedIn, AppointmentStatusInTreatment, true},
		{AppointmentStatusCheckedIn, AppointmentStatusCompleted, true},
		{AppointmentStatusCheckedIn, AppointmentStatusNoShow, false},
		{AppointmentStatusInTreatment, AppointmentStatusCompleted, true},
		{AppointmentStatusInTreatment, AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{AppointmentStatusCancelled, AppointmentStatusScheduled, false},
		{AppointmentStatusNoShow, AppointmentStatusCheckedIn, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusForms(t *testing.T) {
	assert.ElementsMatch(t,
		[]AppointmentStatus{AppointmentStatusScheduled, AppointmentStatusPending, AppointmentStatusUnconfirmed},
		AppointmentStatusScheduled.Forms())
	// Synonyms resolve to the same form set as their canonical status.
	assert.ElementsMatch(t, AppointmentStatusScheduled.Forms(), AppointmentStatusPending.Forms())
	assert.Equal(t, []AppointmentStatus{AppointmentStatusConfirmed}, AppointmentStatusConfirmed.Forms())
}

func TestStatusIsTerminal(t *testing.T) {
	for _, s := range []AppointmentStatus{AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow} {
		assert.True(t, s.IsTerminal(), s)
	}
	for _, s := range []AppointmentStatus{AppointmentStatusScheduled, AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCheckedIn, AppointmentStatusInTreatment} {
		assert.False(t, s.IsTerminal(), s)
	}
}
