package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Locker is a best-effort mutual exclusion keyed per (decision, stage).
// Locks expire after ttl so an abandoned call never blocks later ones.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), acquired bool, err error)
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisLocker shares locks across instances through SET NX PX.
func NewRedisLocker(rdb *goredis.Client, prefix string) Locker {
	if prefix == "" {
		prefix = "decision:analysis:lock"
	}
	return &redisLocker{rdb: rdb, prefix: prefix}
}

func (l *redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	full := l.prefix + ":" + key
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	unlock := func() {
		// Released on a fresh context: the request context may already be done.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.rdb, []string{full}, token).Err()
	}
	return unlock, true, nil
}

type localLocker struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

// NewLocalLocker keeps locks in process memory for single-instance deployments.
func NewLocalLocker() Locker {
	return &localLocker{until: map[string]time.Time{}, now: time.Now}
}

func (l *localLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if exp, ok := l.until[key]; ok && now.Before(exp) {
		return nil, false, nil
	}
	exp := now.Add(ttl)
	l.until[key] = exp
	unlock := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.until[key]; ok && cur.Equal(exp) {
			delete(l.until, key)
		}
	}
	return unlock, true, nil
}
