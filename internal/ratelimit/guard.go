package ratelimit

import (
	"context"
	"sync"
	"time"
)

const guardTTL = 30 * time.Second

// Guard serializes mutations per key. Acquire reports ok=false when the
// key is already held; the caller decides how to surface that.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

type redisGuard struct {
	locker *Locker
	prefix string
}

// NewRedisGuard backs the guard with the shared redis lock so the
// single-flight property holds across replicas.
func NewRedisGuard(locker *Locker, prefix string) Guard {
	return &redisGuard{locker: locker, prefix: prefix}
}

func (g *redisGuard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	lockKey := g.prefix + key
	token, ok, err := g.locker.TryLock(ctx, lockKey, guardTTL)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = g.locker.Release(releaseCtx, lockKey, token)
	}
	return release, true, nil
}

type localGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalGuard is the in-process fallback for single-replica
// deployments without redis.
func NewLocalGuard() Guard {
	return &localGuard{held: make(map[string]struct{})}
}

func (g *localGuard) Acquire(_ context.Context, key string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return nil, false, nil
	}
	g.held[key] = struct{}{}
	release := func() {
		g.mu.Lock()
		delete(g.held, key)
		g.mu.Unlock()
	}
	return release, true, nil
}
