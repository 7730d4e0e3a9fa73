package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Compare-and-delete: only the token that acquired the lock may drop it.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var (
	errLockNoClient = errors.New("lock client not configured")
	errLockEmptyKey = errors.New("lock key is empty")
	errLockBadTTL   = errors.New("lock ttl must be positive")
)

// Locker is a best-effort advisory lock on redis. Each acquisition
// carries a fencing token so a lock that expired and was re-acquired
// by another holder cannot be released by the original one.
type Locker struct {
	rdb    *redis.Client
	unlock *redis.Script
}

func NewLocker(rdb *redis.Client) *Locker {
	if rdb == nil {
		return nil
	}
	return &Locker{
		rdb:    rdb,
		unlock: redis.NewScript(unlockScript),
	}
}

// TryLock attempts a non-blocking acquire and returns the token the
// holder must present to Release.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	switch {
	case l == nil || l.rdb == nil:
		return "", false, errLockNoClient
	case key == "":
		return "", false, errLockEmptyKey
	case ttl <= 0:
		return "", false, errLockBadTTL
	}

	token := uuid.NewString()
	acquired, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, acquired, nil
}

// Release is a no-op on a blank key or token so holders can defer it
// unconditionally.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.rdb == nil || key == "" || token == "" {
		return nil
	}
	return l.unlock.Run(ctx, l.rdb, []string{key}, token).Err()
}
