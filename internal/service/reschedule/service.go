package reschedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/service/scheduling"
	"github.com/smilecare/practice-api/pkg/metrics"
	"github.com/smilecare/practice-api/pkg/timerange"
)

// Service orchestrates a drag move: it resolves the drop target into a
// duration-preserving placement, asks the scheduling engine for a
// conflict preview, and commits only on explicit confirmation.
type Service struct {
	engine  *scheduling.Service
	metrics *metrics.Metrics
}

func NewService(engine *scheduling.Service, m *metrics.Metrics) *Service {
	return &Service{engine: engine, metrics: m}
}

// Resolve computes the new placement for a drop. Fine-grained views
// supply the dropped hour; the month view supplies only a day and the
// appointment keeps its original hour and minute.
func Resolve(appointment *model.Appointment, targetDay time.Time, targetHour *int) (time.Time, time.Time) {
	var newStart time.Time
	if targetHour != nil {
		newStart = timerange.At(targetDay, *targetHour, 0)
	} else {
		newStart = timerange.At(targetDay, appointment.StartTime.Hour(), appointment.StartTime.Minute())
	}
	return newStart, newStart.Add(appointment.Duration())
}

// Preview builds the proposal for the confirm/cancel exchange. A double
// booking is advisory and carried on the proposal; past-time and
// blocked-slot rejections come back as errors and no confirmation is
// offered. A drop on the appointment's own start is a no-op proposal.
func (s *Service) Preview(ctx context.Context, appointmentID uuid.UUID, targetDay time.Time, targetHour *int) (*model.RescheduleProposal, error) {
	appointment, err := s.engine.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	newStart, newEnd := Resolve(appointment, targetDay, targetHour)

	proposal := &model.RescheduleProposal{
		AppointmentID: appointment.ID.String(),
		OriginalStart: appointment.StartTime,
		OriginalEnd:   appointment.EndTime,
		NewStart:      newStart,
		NewEnd:        newEnd,
	}

	if newStart.Equal(appointment.StartTime) {
		proposal.NoOp = true
		return proposal, nil
	}

	if s.metrics != nil {
		s.metrics.ReschedulePreview.Inc()
	}

	check, err := s.engine.ProposeBooking(ctx, scheduling.BookingProposal{
		ClinicID:             appointment.ClinicID,
		DentistID:            appointment.DentistID,
		Start:                newStart,
		End:                  newEnd,
		ExcludeAppointmentID: &appointment.ID,
		Mode:                 scheduling.ModePreview,
	})
	if err != nil {
		return nil, err
	}

	if check.Conflict != nil {
		name := check.Conflict.PatientName()
		proposal.ConflictWith = &name
	}
	return proposal, nil
}

// Commit applies a confirmed move. The hard constraints are re-checked
// against the wall clock and calendar at commit time; an advisory double
// booking the operator confirmed through is not re-raised. Store
// failures leave the appointment at its previous placement.
func (s *Service) Commit(ctx context.Context, appointmentID uuid.UUID, targetDay time.Time, targetHour *int) (*model.Appointment, error) {
	appointment, err := s.engine.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	newStart, newEnd := Resolve(appointment, targetDay, targetHour)
	if newStart.Equal(appointment.StartTime) {
		return appointment, nil
	}

	if _, err := s.engine.ProposeBooking(ctx, scheduling.BookingProposal{
		ClinicID:             appointment.ClinicID,
		DentistID:            appointment.DentistID,
		Start:                newStart,
		End:                  newEnd,
		ExcludeAppointmentID: &appointment.ID,
		Mode:                 scheduling.ModePreview,
	}); err != nil {
		s.countCommit("rejected")
		return nil, err
	}

	if err := s.engine.CommitMove(ctx, appointment, newStart, newEnd); err != nil {
		s.countCommit("failed")
		return nil, fmt.Errorf("failed to commit move: %w", err)
	}

	s.countCommit("committed")
	return appointment, nil
}

func (s *Service) countCommit(outcome string) {
	if s.metrics != nil {
		s.metrics.RescheduleCommits.WithLabelValues(outcome).Inc()
	}
}
