package reschedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/repository/memory"
	"github.com/smilecare/practice-api/internal/service/scheduling"
)

var (
	testNow      = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	testClinicID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testDentist  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func hour(h int) *int { return &h }

func newTestService(store *memory.Store) *Service {
	engine := scheduling.NewService(store, store.Blocks(), nil, nil,
		scheduling.WithClock(func() time.Time { return testNow }))
	return NewService(engine, nil)
}

func seedAppointment(store *memory.Store, start, end time.Time, patient string) *model.Appointment {
	a := &model.Appointment{
		ClinicID:    testClinicID,
		DentistID:   testDentist,
		PatientID:   uuid.New(),
		PatientName: patient,
		StartTime:   start,
		EndTime:     end,
		Treatment:   "Cleaning",
		Status:      model.AppointmentStatusConfirmed,
	}
	a.ID = uuid.New()
	store.SeedAppointment(a)
	return a
}

func TestResolve(t *testing.T) {
	a := &model.Appointment{StartTime: at(10, 9, 15), EndTime: at(10, 10, 0)}

	// Fine-grained drop: target hour wins, minutes reset, duration kept.
	start, end := Resolve(a, day(12), hour(14))
	assert.Equal(t, at(12, 14, 0), start)
	assert.Equal(t, at(12, 14, 45), end)

	// Month-view drop: day changes, original hour and minute survive.
	start, end = Resolve(a, day(12), nil)
	assert.Equal(t, at(12, 9, 15), start)
	assert.Equal(t, at(12, 10, 0), end)
}

func TestPreviewNoOp(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 15), at(10, 10, 0), "Alice Tan")

	proposal, err := svc.Preview(context.Background(), a.ID, day(10), hour(9))
	require.NoError(t, err)
	assert.False(t, proposal.NoOp, "09:00 drop differs from a 09:15 start")

	proposal, err = svc.Preview(context.Background(), a.ID, day(10), nil)
	require.NoError(t, err)
	assert.True(t, proposal.NoOp, "same-day coarse drop resolves to the original start")
	assert.Nil(t, proposal.ConflictWith)
}

func TestPreviewClean(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 0), at(10, 10, 0), "Alice Tan")

	proposal, err := svc.Preview(context.Background(), a.ID, day(11), hour(14))
	require.NoError(t, err)
	assert.False(t, proposal.NoOp)
	assert.Nil(t, proposal.ConflictWith)
	assert.Equal(t, at(11, 14, 0), proposal.NewStart)
	assert.Equal(t, at(11, 15, 0), proposal.NewEnd)
	assert.Equal(t, at(10, 9, 0), proposal.OriginalStart)
}

func TestPreviewDoubleBookingIsAdvisory(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 0), at(10, 10, 0), "Alice Tan")
	seedAppointment(store, at(11, 14, 30), at(11, 15, 30), "Bob Lim")

	proposal, err := svc.Preview(context.Background(), a.ID, day(11), hour(14))
	require.NoError(t, err, "double booking is advisory in a preview")
	require.NotNil(t, proposal.ConflictWith)
	assert.Equal(t, "Bob Lim", *proposal.ConflictWith)
}

func TestPreviewExcludesSelf(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 0), at(10, 10, 0), "Alice Tan")

	// Shift within the original range; the only overlap is with itself.
	proposal, err := svc.Preview(context.Background(), a.ID, day(10), hour(9))
	require.NoError(t, err)
	assert.True(t, proposal.NoOp)

	proposal, err = svc.Preview(context.Background(), a.ID, day(10), hour(10))
	require.NoError(t, err)
	assert.Nil(t, proposal.ConflictWith)
}

func TestPreviewHardRejections(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 0), at(10, 10, 0), "Alice Tan")

	lunch := "Lunch"
	block := &model.BlockedSlot{ClinicID: testClinicID, DentistID: testDentist, StartTime: at(11, 12, 0), EndTime: at(11, 13, 0), Reason: &lunch}
	block.ID = uuid.New()
	store.SeedBlock(block)

	_, err := svc.Preview(context.Background(), a.ID, day(11), hour(12))
	var blocked *scheduling.BlockedSlotConflict
	assert.ErrorAs(t, err, &blocked)

	_, err = svc.Preview(context.Background(), a.ID, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), hour(9))
	var past *scheduling.PastSchedulingError
	assert.ErrorAs(t, err, &past)
}

func TestCommitMovesAppointment(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 0), at(10, 10, 0), "Alice Tan")

	moved, err := svc.Commit(context.Background(), a.ID, day(11), hour(14))
	require.NoError(t, err)
	assert.Equal(t, at(11, 14, 0), moved.StartTime)
	assert.Equal(t, at(11, 15, 0), moved.EndTime)

	stored, err := store.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, at(11, 14, 0), stored.StartTime)
	assert.Equal(t, at(11, 15, 0), stored.EndTime)
}

func TestCommitNoOpLeavesPlacement(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 15), at(10, 10, 0), "Alice Tan")

	moved, err := svc.Commit(context.Background(), a.ID, day(10), nil)
	require.NoError(t, err)
	assert.Equal(t, at(10, 9, 15), moved.StartTime)
	assert.Equal(t, at(10, 10, 0), moved.EndTime)
}

func TestCommitConfirmedThroughDoubleBooking(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 0), at(10, 10, 0), "Alice Tan")
	seedAppointment(store, at(11, 14, 30), at(11, 15, 30), "Bob Lim")

	// Operator saw the advisory conflict and confirmed anyway.
	moved, err := svc.Commit(context.Background(), a.ID, day(11), hour(14))
	require.NoError(t, err)
	assert.Equal(t, at(11, 14, 0), moved.StartTime)
}

func TestCommitRejectsBlockedSlot(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 0), at(10, 10, 0), "Alice Tan")

	block := &model.BlockedSlot{ClinicID: testClinicID, DentistID: testDentist, StartTime: at(11, 12, 0), EndTime: at(11, 13, 0)}
	block.ID = uuid.New()
	store.SeedBlock(block)

	_, err := svc.Commit(context.Background(), a.ID, day(11), hour(12))
	var blocked *scheduling.BlockedSlotConflict
	require.ErrorAs(t, err, &blocked)

	stored, err := store.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, at(10, 9, 0), stored.StartTime, "rejected move must not touch placement")
}

func TestCommitStoreFailureLeavesPlacement(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	a := seedAppointment(store, at(10, 9, 0), at(10, 10, 0), "Alice Tan")

	store.WriteErr = assert.AnError
	_, err := svc.Commit(context.Background(), a.ID, day(11), hour(14))
	require.Error(t, err)

	store.WriteErr = nil
	stored, err := store.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, at(10, 9, 0), stored.StartTime)
	assert.Equal(t, at(10, 10, 0), stored.EndTime)
}
