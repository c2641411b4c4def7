package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/pkg/timerange"
)

// Window resolves the half-open [start, end) range a view kind covers
// around the reference instant. Day and week views use calendar-day
// granularity with weeks starting Monday; month views cover the calendar
// month.
func Window(kind model.CalendarViewKind, at time.Time) (time.Time, time.Time) {
	switch kind {
	case model.CalendarViewWeek:
		start := timerange.StartOfWeek(at)
		return start, start.AddDate(0, 0, 7)
	case model.CalendarViewMonth:
		start := timerange.StartOfMonth(at)
		return start, start.AddDate(0, 1, 0)
	default:
		start := timerange.StartOfDay(at)
		return start, start.AddDate(0, 0, 1)
	}
}

// CalendarView loads and projects one window of a clinic calendar,
// optionally narrowed to a single dentist. Computed views are cached
// briefly and dropped on any calendar write for the clinic.
func (s *Service) CalendarView(ctx context.Context, clinicID uuid.UUID, dentistID *uuid.UUID, at time.Time, kind model.CalendarViewKind) (*model.CalendarView, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown calendar view kind %q", kind)
	}

	windowStart, windowEnd := Window(kind, at)

	cacheKey := fmt.Sprintf("%s:%s:%s:%s", clinicID, kind, windowStart.Format(time.RFC3339), dentistKey(dentistID))
	if cached, ok := s.views.Get(cacheKey); ok {
		return cached.(*model.CalendarView), nil
	}

	filters := &model.AppointmentFilters{
		ClinicID:  clinicID,
		DentistID: dentistID,
		From:      &windowStart,
		To:        &windowEnd,
	}
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	var slots []*model.BlockedSlot
	if dentistID != nil {
		slots, err = s.blocks.ForDentist(ctx, *dentistID, windowStart, windowEnd)
	} else {
		slots, err = s.blocks.ForClinic(ctx, clinicID, windowStart, windowEnd)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load blocked slots: %w", err)
	}

	view := BuildCalendarView(appointments, slots, windowStart, windowEnd, kind)
	s.views.SetDefault(cacheKey, view)
	return view, nil
}

// BuildCalendarView filters both collections to the window and computes
// the aggregate statistics. It is pure; the service wraps it with
// loading and caching.
func BuildCalendarView(appointments []*model.Appointment, slots []*model.BlockedSlot, windowStart, windowEnd time.Time, kind model.CalendarViewKind) *model.CalendarView {
	view := &model.CalendarView{
		Kind:        kind,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	for _, a := range appointments {
		if timerange.Overlaps(a.StartTime, a.EndTime, windowStart, windowEnd) {
			view.Appointments = append(view.Appointments, a)
		}
	}
	for _, b := range slots {
		if timerange.Overlaps(b.StartTime, b.EndTime, windowStart, windowEnd) {
			view.BlockedSlots = append(view.BlockedSlots, b)
		}
	}

	view.Stats = buildStats(view.Appointments, windowStart, windowEnd)
	return view
}

func buildStats(appointments []*model.Appointment, windowStart, windowEnd time.Time) model.CalendarStats {
	stats := model.CalendarStats{Total: len(appointments)}

	rooms := make(map[string]struct{})
	var booked time.Duration

	for _, a := range appointments {
		switch a.Status.Normalize() {
		case model.AppointmentStatusConfirmed:
			stats.Confirmed++
		case model.AppointmentStatusScheduled:
			stats.Pending++
		case model.AppointmentStatusCancelled:
			stats.Cancelled++
		}

		if a.Status.Normalize() != model.AppointmentStatusCancelled && a.Status.Normalize() != model.AppointmentStatusNoShow {
			booked += a.Duration()
			if a.Room != nil && *a.Room != "" {
				rooms[*a.Room] = struct{}{}
			}
		}
	}

	// With no declared rooms utilization assumes a single chair.
	roomCount := len(rooms)
	if roomCount == 0 {
		roomCount = 1
	}

	days := timerange.DaysIn(windowStart, windowEnd)
	capacity := time.Duration(roomCount*days*timerange.WorkingHoursPerDay) * time.Hour

	percent := int(booked * 100 / capacity)
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	stats.UtilizationPercent = percent

	return stats
}

func dentistKey(id *uuid.UUID) string {
	if id == nil {
		return "all"
	}
	return id.String()
}
