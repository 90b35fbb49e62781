package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
)

var _ ports.SequenceStore = (*SequenceStore)(nil)

const (
	defaultKeyPrefix = "orders:sequence:"
	// Counters only need to outlive their month.
	defaultTTL = 62 * 24 * time.Hour
)

// SequenceStore hands out per-month order sequences with Redis INCR inside a
// MULTI/EXEC that also sets the key's expiry.
type SequenceStore struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewSequenceStore(client goredis.Cmdable) *SequenceStore {
	return &SequenceStore{client: client, prefix: defaultKeyPrefix, ttl: defaultTTL}
}

// Key returns the Redis key holding the counter for period.
func (s *SequenceStore) Key(period domain.Period) string {
	return s.prefix + period.Key()
}

func (s *SequenceStore) Next(ctx context.Context, period domain.Period) (int64, error) {
	if s == nil || s.client == nil {
		return 0, errors.New("redis sequence store not configured")
	}
	key := s.Key(period)
	var incr *goredis.IntCmd
	// EXPIRE NX keeps the first TTL and repairs a key that lost it, so a failed
	// expiry never leaves the counter without one. Requires Redis 7.
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
