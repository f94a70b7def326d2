package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Deletes the key only while it still carries our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

const DefaultTTL = 5 * time.Minute

// RedisLocker shares locks between API instances. Keys expire after ttl so a
// crashed holder cannot block a period forever.
type RedisLocker struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	token  func() string
}

func NewRedisLocker(client redis.Cmdable, prefix string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		token:  func() string { return uuid.NewString() },
	}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (Release, error) {
	fullKey := l.prefix + key
	token := l.token()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", fullKey, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	var (
		once       sync.Once
		releaseErr error
	)
	return func(ctx context.Context) error {
		once.Do(func() {
			if err := l.client.Eval(ctx, releaseScript, []string{fullKey}, token).Err(); err != nil {
				releaseErr = fmt.Errorf("failed to release lock %s: %w", fullKey, err)
			}
		})
		return releaseErr
	}, nil
}
