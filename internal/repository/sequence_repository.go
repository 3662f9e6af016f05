package repository

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/tidewater/service-booking/internal/domain"
)

const sequenceKeyPrefix = "seq:"

// RedisSequenceStore implements booking.SequenceStore on a single Redis
// counter per sequence name. INCR is atomic on the server, so concurrent
// callers can never observe the same value, and an absent key starts at 0 so
// the first returned value is 1.
type RedisSequenceStore struct {
	client redis.Cmdable
}

// NewRedisSequenceStore creates a new RedisSequenceStore.
func NewRedisSequenceStore(client redis.Cmdable) *RedisSequenceStore {
	return &RedisSequenceStore{client: client}
}

// Next returns the next value in the named sequence. A store failure maps to
// SequenceUnavailable; no value is fabricated locally.
func (s *RedisSequenceStore) Next(ctx context.Context, name string) (int64, error) {
	val, err := s.client.Incr(ctx, sequenceKeyPrefix+name).Result()
	if err != nil {
		return 0, domain.Wrap(domain.CodeSequenceUnavailable, "sequence store unreachable", err)
	}
	return val, nil
}
