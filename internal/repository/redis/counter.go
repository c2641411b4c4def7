package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smilecare/practice-api/internal/repository"
)

// counterRepository keeps the per-clinic daily check-in counter in Redis
// for deployments that want queue numbers off the primary database. INCR
// carries the same atomicity guarantee as the postgres upsert.
type counterRepository struct {
	client *redis.Client
}

func NewCounterRepository(url string) (repository.CounterRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &counterRepository{client: client}, nil
}

func (r *counterRepository) Next(ctx context.Context, clinicID uuid.UUID, day time.Time) (int, error) {
	key := fmt.Sprintf("queue:%s:%s", clinicID, day.Format("2006-01-02"))

	value, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to issue queue number: %w", err)
	}

	// First issue of the day sets the key to expire once the business
	// day is well over; numbers are never reused within the day.
	if value == 1 {
		endOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).AddDate(0, 0, 2)
		if err := r.client.ExpireAt(ctx, key, endOfDay).Err(); err != nil {
			return 0, fmt.Errorf("failed to set counter expiry: %w", err)
		}
	}

	return int(value), nil
}
