package visit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/repository/memory"
)

var (
	testNow      = time.Date(2024, 6, 12, 9, 5, 0, 0, time.UTC)
	testClinicID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
)

func newTestService(store *memory.Store) *Service {
	svc := NewService(store, store, store, nil, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func seedAppointment(store *memory.Store, status model.AppointmentStatus) *model.Appointment {
	a := &model.Appointment{
		ClinicID:    testClinicID,
		DentistID:   uuid.New(),
		PatientID:   uuid.New(),
		PatientName: "Alice Tan",
		StartTime:   time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC),
		EndTime:     time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC),
		Treatment:   "Cleaning",
		Status:      status,
	}
	a.ID = uuid.New()
	store.SeedAppointment(a)
	return a
}

func TestTransitionHappyPath(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, model.AppointmentStatusScheduled)
	store.ConfirmPayment(a.ID)

	for _, target := range []model.AppointmentStatus{
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCheckedIn,
		model.AppointmentStatusInTreatment,
		model.AppointmentStatusCompleted,
	} {
		result, err := svc.Transition(context.Background(), a.ID, target, TransitionOptions{})
		require.NoError(t, err, "to %s", target)
		assert.Equal(t, target, result.Appointment.Status)
	}

	final, err := store.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, final.Status)
	require.NotNil(t, final.CheckInTime)
	require.NotNil(t, final.CheckOutTime)
	require.NotNil(t, final.QueueNumber)
	assert.Equal(t, 1, *final.QueueNumber)
}

func TestTransitionRejectsInvalidTarget(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, model.AppointmentStatusScheduled)

	cases := []struct {
		from   model.AppointmentStatus
		target model.AppointmentStatus
	}{
		{model.AppointmentStatusScheduled, model.AppointmentStatusInTreatment},
		{model.AppointmentStatusScheduled, model.AppointmentStatusCompleted},
		{model.AppointmentStatusCheckedIn, model.AppointmentStatusScheduled},
		{model.AppointmentStatusInTreatment, model.AppointmentStatusNoShow},
	}
	for _, tc := range cases {
		a.Status = tc.from
		store.SeedAppointment(a)

		_, err := svc.Transition(context.Background(), a.ID, tc.target, TransitionOptions{})
		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid, "%s -> %s", tc.from, tc.target)
		assert.Equal(t, tc.from, invalid.From)

		stored, err := store.Get(context.Background(), a.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.from, stored.Status, "rejected transition must not change state")
	}

	_, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatus("resurrected"), TransitionOptions{})
	var invalid *InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestTransitionTerminalStatesAreFinal(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	for _, terminal := range []model.AppointmentStatus{
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
	} {
		a := seedAppointment(store, terminal)
		_, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusScheduled, TransitionOptions{})
		var invalid *InvalidTransitionError
		assert.ErrorAs(t, err, &invalid, "from %s", terminal)
	}
}

func TestTransitionLegacyStatusesNormalize(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, model.AppointmentStatusPending)

	result, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusConfirmed, TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, result.Appointment.Status)
}

func TestEarlyCheckInAllowed(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	// Scheduled straight to checked_in, skipping confirmation, and well
	// before the slot's start time.
	a := seedAppointment(store, model.AppointmentStatusScheduled)

	result, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusCheckedIn, TransitionOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.QueueNumber)
	assert.Equal(t, 1, *result.QueueNumber)
	assert.Equal(t, testNow, *result.Appointment.CheckInTime)
}

func TestQueueNumbersIncreasePerClinicDay(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	for i := 1; i <= 3; i++ {
		a := seedAppointment(store, model.AppointmentStatusConfirmed)
		result, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusCheckedIn, TransitionOptions{})
		require.NoError(t, err)
		require.NotNil(t, result.QueueNumber)
		assert.Equal(t, i, *result.QueueNumber)
	}

	// A different clinic starts its own sequence at 1.
	other := seedAppointment(store, model.AppointmentStatusConfirmed)
	other.ClinicID = uuid.New()
	store.SeedAppointment(other)

	result, err := svc.Transition(context.Background(), other.ID, model.AppointmentStatusCheckedIn, TransitionOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.QueueNumber)
	assert.Equal(t, 1, *result.QueueNumber)
}

func TestQueueNumberNotReassigned(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	a := seedAppointment(store, model.AppointmentStatusConfirmed)
	first, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusCheckedIn, TransitionOptions{})
	require.NoError(t, err)
	require.NotNil(t, first.QueueNumber)

	// Walk the visit forward; the stored number must survive untouched.
	_, err = svc.Transition(context.Background(), a.ID, model.AppointmentStatusInTreatment, TransitionOptions{})
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.QueueNumber)
	assert.Equal(t, *first.QueueNumber, *stored.QueueNumber)
}

func TestCheckoutRequiresPayment(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, model.AppointmentStatusInTreatment)

	_, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusCompleted, TransitionOptions{})
	var payment *PaymentRequiredError
	require.ErrorAs(t, err, &payment)
	assert.Equal(t, a.ID, payment.AppointmentID)

	// The guard fires before any write; the visit stays in treatment.
	stored, err := store.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInTreatment, stored.Status)
	assert.Nil(t, stored.CheckOutTime)

	store.ConfirmPayment(a.ID)
	result, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusCompleted, TransitionOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Appointment.CheckOutTime)
	assert.Equal(t, testNow, *result.Appointment.CheckOutTime)
}

func TestCancellationRecordsReason(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, model.AppointmentStatusConfirmed)

	reason := "patient called to cancel"
	result, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusCancelled, TransitionOptions{Reason: &reason})
	require.NoError(t, err)
	require.NotNil(t, result.Appointment.CancelReason)
	assert.Equal(t, reason, *result.Appointment.CancelReason)
}

func TestAutoTransitionGuard(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	for _, from := range []model.AppointmentStatus{
		model.AppointmentStatusScheduled,
		model.AppointmentStatusConfirmed,
	} {
		a := seedAppointment(store, from)
		_, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusCheckedIn, TransitionOptions{Auto: true})
		var auto *AutoTransitionError
		require.ErrorAs(t, err, &auto, "from %s", from)
		assert.Equal(t, from, auto.From)
	}

	// Later stages may advance automatically.
	a := seedAppointment(store, model.AppointmentStatusCheckedIn)
	_, err := svc.Transition(context.Background(), a.ID, model.AppointmentStatusInTreatment, TransitionOptions{Auto: true})
	assert.NoError(t, err)
}

func TestTransitionUnknownAppointment(t *testing.T) {
	svc := newTestService(memory.NewStore())
	_, err := svc.Transition(context.Background(), uuid.New(), model.AppointmentStatusConfirmed, TransitionOptions{})
	assert.Error(t, err)
}
