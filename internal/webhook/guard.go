package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryGuard remembers webhook delivery ids so a redelivered event is
// processed once.
type DeliveryGuard interface {
	// Claim records id and reports whether this caller is the first to see it.
	Claim(ctx context.Context, id string) (bool, error)
	// Release forgets id so a later redelivery is processed again.
	Release(ctx context.Context, id string) error
}

// MemoryGuard is a process-local DeliveryGuard with expiring entries.
type MemoryGuard struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryGuard creates a MemoryGuard that forgets ids after ttl.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{ttl: ttl, seen: make(map[string]time.Time), now: time.Now}
}

// Claim drops expired ids, then records id until ttl passes. It reports
// false while an earlier claim on id is still live.
func (g *MemoryGuard) Claim(ctx context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.seen {
		if now.After(exp) {
			delete(g.seen, k)
		}
	}
	if _, ok := g.seen[id]; ok {
		return false, nil
	}
	g.seen[id] = now.Add(g.ttl)
	return true, nil
}

// Release forgets id immediately.
func (g *MemoryGuard) Release(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, id)
	return nil
}

// RedisGuard is a DeliveryGuard shared across server instances.
type RedisGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisGuard creates a guard storing ids under "oms:webhook:delivery:".
func NewRedisGuard(client redis.Cmdable, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

func deliveryKey(id string) string {
	return "oms:webhook:delivery:" + id
}

// Claim sets the delivery key with SETNX and the guard's ttl. It reports
// false when the key already exists.
func (g *RedisGuard) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := g.client.SetNX(ctx, deliveryKey(id), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim delivery %s: %w", id, err)
	}
	return ok, nil
}

// Release deletes the delivery key.
func (g *RedisGuard) Release(ctx context.Context, id string) error {
	if err := g.client.Del(ctx, deliveryKey(id)).Err(); err != nil {
		return fmt.Errorf("release delivery %s: %w", id, err)
	}
	return nil
}
