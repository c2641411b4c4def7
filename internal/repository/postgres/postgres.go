package postgres

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/smilecare/practice-api/internal/repository"
	"github.com/smilecare/practice-api/pkg/metrics"
)

type appointmentRepository struct {
	db *sqlx.DB
	m  *metrics.Metrics
}

type blockedSlotRepository struct {
	db *sqlx.DB
	m  *metrics.Metrics
}

type counterRepository struct {
	db *sqlx.DB
	m  *metrics.Metrics
}

type paymentRepository struct {
	db *sqlx.DB
	m  *metrics.Metrics
}

func NewAppointmentRepository(db *sqlx.DB, m *metrics.Metrics) repository.AppointmentRepository {
	return &appointmentRepository{db: db, m: m}
}

func NewBlockedSlotRepository(db *sqlx.DB, m *metrics.Metrics) repository.BlockedSlotRepository {
	return &blockedSlotRepository{db: db, m: m}
}

func NewCounterRepository(db *sqlx.DB, m *metrics.Metrics) repository.CounterRepository {
	return &counterRepository{db: db, m: m}
}

func NewPaymentRepository(db *sqlx.DB, m *metrics.Metrics) repository.PaymentRepository {
	return &paymentRepository{db: db, m: m}
}

// observe records one statement's outcome and latency. Domain
// rejections like ErrOverlapDetected count as ok; they are decisions,
// not store failures.
func observe(m *metrics.Metrics, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil &&
		!errors.Is(err, repository.ErrOverlapDetected) &&
		!errors.Is(err, repository.ErrNotFound) &&
		!errors.Is(err, repository.ErrStaleStatus) {
		status = "error"
	}
	m.DatabaseOperations.WithLabelValues(operation, status).Inc()
	m.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
