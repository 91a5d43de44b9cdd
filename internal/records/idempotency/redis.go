package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "idem:submission:" // idem:submission:{scope}:{key}
	pendingValue = "pending"
	pendingTTL   = 2 * time.Minute // upper bound on a single submit
)

type Outcome int

const (
	// Reserved means the caller owns the key and must Complete or Release it.
	Reserved Outcome = iota
	// Replay means the key is already bound to RecordID.
	Replay
	// InFlight means another request holds the key and has not finished.
	InFlight
)

type Reservation struct {
	Outcome  Outcome
	RecordID string
}

// Guard binds client supplied idempotency keys to record ids in Redis.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGuard(client *redis.Client, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Guard{client: client, ttl: ttl}
}

// Reserve claims key within scope with SET NX. When the key already exists
// the stored value tells a finished submission apart from one in flight.
func (g *Guard) Reserve(ctx context.Context, scope, key string) (Reservation, error) {
	k := g.key(scope, key)

	// Two attempts cover a pending key that expires between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := g.client.SetNX(ctx, k, pendingValue, pendingTTL).Result()
		if err != nil {
			return Reservation{}, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if ok {
			return Reservation{Outcome: Reserved}, nil
		}

		v, err := g.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return Reservation{}, fmt.Errorf("read idempotency key: %w", err)
		}
		if v == pendingValue {
			return Reservation{Outcome: InFlight}, nil
		}
		return Reservation{Outcome: Replay, RecordID: v}, nil
	}
	return Reservation{Outcome: InFlight}, nil
}

// Complete binds a reserved key to the record it produced.
func (g *Guard) Complete(ctx context.Context, scope, key, recordID string) error {
	if err := g.client.Set(ctx, g.key(scope, key), recordID, g.ttl).Err(); err != nil {
		return fmt.Errorf("bind idempotency key: %w", err)
	}
	return nil
}

// Release drops a reservation whose write failed so the client may retry.
func (g *Guard) Release(ctx context.Context, scope, key string) error {
	if err := g.client.Del(ctx, g.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func (g *Guard) key(scope, key string) string {
	return keyPrefix + scope + ":" + key
}
