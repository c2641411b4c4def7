// Package memory provides an in-memory implementation of the repository
// interfaces with the same commit-time semantics as the postgres
// implementation. It backs the service tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/repository"
	"github.com/smilecare/practice-api/pkg/timerange"
)

// Store holds every collection behind one lock. WriteErr, when set, is
// returned by every write to simulate an unreachable store.
type Store struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
	blocks       map[uuid.UUID]*model.BlockedSlot
	counters     map[string]int
	payments     map[uuid.UUID]bool

	WriteErr error
}

func NewStore() *Store {
	return &Store{
		appointments: make(map[uuid.UUID]*model.Appointment),
		blocks:       make(map[uuid.UUID]*model.BlockedSlot),
		counters:     make(map[string]int),
		payments:     make(map[uuid.UUID]bool),
	}
}

// ConfirmPayment marks the appointment as paid for the checkout guard.
func (s *Store) ConfirmPayment(appointmentID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[appointmentID] = true
}

// SeedAppointment inserts without conflict checking.
func (s *Store) SeedAppointment(a *model.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.appointments[a.ID] = &cp
}

// SeedBlock inserts without validation.
func (s *Store) SeedBlock(b *model.BlockedSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.blocks[b.ID] = &cp
}

func (s *Store) Create(ctx context.Context, appointment *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}

	for _, existing := range s.appointments {
		if existing.DentistID == appointment.DentistID &&
			!existing.Status.IsTerminal() &&
			timerange.Overlaps(appointment.StartTime, appointment.EndTime, existing.StartTime, existing.EndTime) {
			return repository.ErrOverlapDetected
		}
	}
	for _, b := range s.blocks {
		if b.DentistID == appointment.DentistID &&
			timerange.Overlaps(appointment.StartTime, appointment.EndTime, b.StartTime, b.EndTime) {
			return repository.ErrOverlapDetected
		}
	}

	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()
	cp := *appointment
	s.appointments[appointment.ID] = &cp
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Appointment
	for _, a := range s.appointments {
		if a.ClinicID != filters.ClinicID {
			continue
		}
		if filters.DentistID != nil && a.DentistID != *filters.DentistID {
			continue
		}
		if filters.PatientID != nil && a.PatientID != *filters.PatientID {
			continue
		}
		if filters.Status != nil && a.Status.Normalize() != filters.Status.Normalize() {
			continue
		}
		if filters.From != nil && !a.EndTime.After(*filters.From) {
			continue
		}
		if filters.To != nil && !a.StartTime.Before(*filters.To) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) ActiveForDentist(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Appointment
	for _, a := range s.appointments {
		if a.DentistID != dentistID || a.Status.IsTerminal() {
			continue
		}
		if !timerange.Overlaps(a.StartTime, a.EndTime, from, to) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) UpdatePlacement(ctx context.Context, id uuid.UUID, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}

	a, ok := s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, b := range s.blocks {
		if b.DentistID == a.DentistID && timerange.Overlaps(start, end, b.StartTime, b.EndTime) {
			return repository.ErrOverlapDetected
		}
	}

	a.StartTime = start
	a.EndTime = end
	a.UpdatedAt = time.Now()
	return nil
}

func (s *Store) TransitionStatus(ctx context.Context, appointment *model.Appointment, from model.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}

	stored, ok := s.appointments[appointment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrStaleStatus
	}

	appointment.UpdatedAt = time.Now()
	cp := *appointment
	s.appointments[appointment.ID] = &cp
	return nil
}

func (s *Store) CreateBlock(ctx context.Context, slot *model.BlockedSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = time.Now()
	cp := *slot
	s.blocks[slot.ID] = &cp
	return nil
}

func (s *Store) GetBlock(ctx context.Context, id uuid.UUID) (*model.BlockedSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	if _, ok := s.blocks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.blocks, id)
	return nil
}

func (s *Store) BlocksForDentist(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*model.BlockedSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.BlockedSlot
	for _, b := range s.blocks {
		if b.DentistID != dentistID {
			continue
		}
		if !timerange.Overlaps(b.StartTime, b.EndTime, from, to) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sortBlocksByStart(out)
	return out, nil
}

func (s *Store) BlocksForClinic(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*model.BlockedSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.BlockedSlot
	for _, b := range s.blocks {
		if b.ClinicID != clinicID {
			continue
		}
		if !timerange.Overlaps(b.StartTime, b.EndTime, from, to) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sortBlocksByStart(out)
	return out, nil
}

// Next mirrors the atomic counter upsert.
func (s *Store) Next(ctx context.Context, clinicID uuid.UUID, day time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}
	key := fmt.Sprintf("%s:%s", clinicID, day.Format("2006-01-02"))
	s.counters[key]++
	return s.counters[key], nil
}

func (s *Store) IsPaymentConfirmed(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[appointmentID], nil
}

// Blocks adapts the store to repository.BlockedSlotRepository, whose
// method names collide with the appointment ones.
func (s *Store) Blocks() repository.BlockedSlotRepository {
	return blockView{s}
}

type blockView struct {
	s *Store
}

func (v blockView) Create(ctx context.Context, slot *model.BlockedSlot) error {
	return v.s.CreateBlock(ctx, slot)
}

func (v blockView) Get(ctx context.Context, id uuid.UUID) (*model.BlockedSlot, error) {
	return v.s.GetBlock(ctx, id)
}

func (v blockView) Delete(ctx context.Context, id uuid.UUID) error {
	return v.s.DeleteBlock(ctx, id)
}

func (v blockView) ForDentist(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*model.BlockedSlot, error) {
	return v.s.BlocksForDentist(ctx, dentistID, from, to)
}

func (v blockView) ForClinic(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*model.BlockedSlot, error) {
	return v.s.BlocksForClinic(ctx, clinicID, from, to)
}

func sortByStart(list []*model.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].StartTime.Before(list[j].StartTime)
	})
}

func sortBlocksByStart(list []*model.BlockedSlot) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].StartTime.Before(list[j].StartTime)
	})
}
