package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/notification"
	"github.com/smilecare/practice-api/internal/repository"
	"github.com/smilecare/practice-api/pkg/metrics"
	"github.com/smilecare/practice-api/pkg/timerange"
	"github.com/smilecare/practice-api/pkg/validator"
)

// Mode selects the contract of a conflict check. Commit mode rejects any
// conflict; preview mode reports a double booking as advisory so the
// operator can decide, while past-time and blocked-slot rejections stay
// hard in both modes.
type Mode int

const (
	ModeCommit Mode = iota
	ModePreview
)

// BookingProposal is a candidate placement for one dentist's calendar.
type BookingProposal struct {
	ClinicID             uuid.UUID
	DentistID            uuid.UUID
	Start                time.Time
	End                  time.Time
	ExcludeAppointmentID *uuid.UUID
	Mode                 Mode
}

// BookingCheck is the outcome of a side-effect-free proposal check.
// Conflict is only populated in preview mode.
type BookingCheck struct {
	OK       bool
	Conflict *DoubleBookingConflict
}

const viewCacheTTL = 30 * time.Second

// Service is the conflict and placement engine. It validates candidate
// bookings and blocks against the stored calendar and commits them
// through the persistence collaborator only after acceptance.
type Service struct {
	appointments repository.AppointmentRepository
	blocks       repository.BlockedSlotRepository
	notifier     notification.Publisher
	metrics      *metrics.Metrics
	views        *gocache.Cache
	validate     validator.Validator
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for past-time checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(appointments repository.AppointmentRepository, blocks repository.BlockedSlotRepository, notifier notification.Publisher, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		appointments: appointments,
		blocks:       blocks,
		notifier:     notifier,
		metrics:      m,
		views:        gocache.New(viewCacheTTL, 2*viewCacheTTL),
		validate:     validator.New(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProposeBooking checks a candidate placement without side effects.
// Check order: range validity, past time, blocked slots, double booking.
func (s *Service) ProposeBooking(ctx context.Context, p BookingProposal) (*BookingCheck, error) {
	if !p.Start.Before(p.End) {
		return nil, ErrInvalidRange
	}
	if now := s.now(); timerange.IsPast(p.Start, now) {
		return nil, &PastSchedulingError{Start: p.Start, Now: now}
	}

	blocks, err := s.blocks.ForDentist(ctx, p.DentistID, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocked slots: %w", err)
	}
	for _, b := range blocks {
		if timerange.Overlaps(p.Start, p.End, b.StartTime, b.EndTime) {
			return nil, &BlockedSlotConflict{Slot: b}
		}
	}

	booked, err := s.appointments.ActiveForDentist(ctx, p.DentistID, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}
	for _, a := range booked {
		if p.ExcludeAppointmentID != nil && a.ID == *p.ExcludeAppointmentID {
			continue
		}
		if !timerange.Overlaps(p.Start, p.End, a.StartTime, a.EndTime) {
			continue
		}
		conflict := &DoubleBookingConflict{Appointment: a}
		if p.Mode == ModePreview {
			return &BookingCheck{OK: false, Conflict: conflict}, nil
		}
		return nil, conflict
	}

	return &BookingCheck{OK: true}, nil
}

// ProposeBlock validates a candidate time-block. Blocks are allowed to
// overlap existing appointments and other blocks; only impossible and
// past-dated ranges are rejected.
func (s *Service) ProposeBlock(ctx context.Context, start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidRange
	}
	if now := s.now(); timerange.IsPast(start, now) {
		return &PastSchedulingError{Start: start, Now: now}
	}
	return nil
}

// CreateAppointment validates and commits a new booking. Commit races
// that slip past the read-time check are rejected by the store and
// surfaced as a generic double-booking conflict.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, fmt.Errorf("invalid appointment request: %w", err)
	}

	if _, err := s.ProposeBooking(ctx, BookingProposal{
		ClinicID:  req.ClinicID,
		DentistID: req.DentistID,
		Start:     req.StartTime,
		End:       req.EndTime,
		Mode:      ModeCommit,
	}); err != nil {
		s.countBooking("rejected")
		return nil, err
	}

	appointment := &model.Appointment{
		ClinicID:    req.ClinicID,
		DentistID:   req.DentistID,
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Treatment:   req.Treatment,
		Room:        req.Room,
		Status:      model.AppointmentStatusScheduled,
	}
	appointment.ID = uuid.New()

	if err := s.appointments.Create(ctx, appointment); err != nil {
		s.countBooking("rejected")
		if errors.Is(err, repository.ErrOverlapDetected) {
			return nil, s.classifyCommitConflict(ctx, appointment)
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.countBooking("accepted")
	s.invalidateViews(req.ClinicID)
	s.publish(ctx, "appointment_created", appointment)
	return appointment, nil
}

// classifyCommitConflict re-reads the dentist's calendar after the store
// rejected a write-time race, so the rejection names whatever actually
// won the range: a freshly placed block, or the rival appointment's
// patient.
func (s *Service) classifyCommitConflict(ctx context.Context, candidate *model.Appointment) error {
	blocks, err := s.blocks.ForDentist(ctx, candidate.DentistID, candidate.StartTime, candidate.EndTime)
	if err == nil {
		for _, b := range blocks {
			if timerange.Overlaps(candidate.StartTime, candidate.EndTime, b.StartTime, b.EndTime) {
				return &BlockedSlotConflict{Slot: b}
			}
		}
	}

	booked, err := s.appointments.ActiveForDentist(ctx, candidate.DentistID, candidate.StartTime, candidate.EndTime)
	if err == nil {
		for _, a := range booked {
			if a.ID == candidate.ID {
				continue
			}
			if timerange.Overlaps(candidate.StartTime, candidate.EndTime, a.StartTime, a.EndTime) {
				return &DoubleBookingConflict{Appointment: a}
			}
		}
	}

	// The winner vanished between the rejection and the re-read.
	return &DoubleBookingConflict{}
}

// CommitMove re-places an existing appointment. Callers are expected to
// have run the preview exchange first; the store still re-checks overlap
// at write time.
func (s *Service) CommitMove(ctx context.Context, appointment *model.Appointment, newStart, newEnd time.Time) error {
	if err := s.appointments.UpdatePlacement(ctx, appointment.ID, newStart, newEnd); err != nil {
		if errors.Is(err, repository.ErrOverlapDetected) {
			// A block landed on the target range between preview and
			// commit; blocked slots are never overridable.
			return &BlockedSlotConflict{}
		}
		return fmt.Errorf("failed to move appointment: %w", err)
	}

	appointment.StartTime = newStart
	appointment.EndTime = newEnd
	s.invalidateViews(appointment.ClinicID)
	s.publish(ctx, "appointment_moved", appointment)
	return nil
}

// CreateBlock commits a staff time-block.
func (s *Service) CreateBlock(ctx context.Context, req *model.CreateBlockedSlotRequest) (*model.BlockedSlot, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, fmt.Errorf("invalid blocked slot request: %w", err)
	}

	if err := s.ProposeBlock(ctx, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	slot := &model.BlockedSlot{
		ClinicID:  req.ClinicID,
		DentistID: req.DentistID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}
	slot.ID = uuid.New()

	if err := s.blocks.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to create blocked slot: %w", err)
	}

	if s.metrics != nil {
		s.metrics.BlocksCreated.Inc()
	}
	s.invalidateViews(req.ClinicID)
	s.publish(ctx, "slot_blocked", slot)
	return slot, nil
}

// DeleteBlock removes a staff time-block ("unblock").
func (s *Service) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	slot, err := s.blocks.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get blocked slot: %w", err)
	}

	if err := s.blocks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete blocked slot: %w", err)
	}

	s.invalidateViews(slot.ClinicID)
	s.publish(ctx, "slot_unblocked", slot)
	return nil
}

// GetAppointment loads one appointment.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appointment, nil
}

// ListAppointments returns a clinic's appointments under the filters.
func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) countBooking(outcome string) {
	if s.metrics != nil {
		s.metrics.BookingDecisions.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) invalidateViews(clinicID uuid.UUID) {
	// Views are cached per clinic; any write drops all windows for it.
	for key := range s.views.Items() {
		if len(key) >= 36 && key[:36] == clinicID.String() {
			s.views.Delete(key)
		}
	}
}

func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	// Outcome publishing is best-effort; a failed notification never
	// rolls back a committed write.
	_ = s.notifier.Publish(ctx, eventType, payload)
}
