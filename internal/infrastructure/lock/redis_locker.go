package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/pickup-games/internal/platform/logging"
)

const (
	defaultLockTTL      = 5 * time.Second
	defaultRetryBackoff = 15 * time.Millisecond
	unlockTimeout       = 2 * time.Second
	keyPrefix           = "pickup:game-lock:"
)

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a per-game lock shared by every API replica.
type RedisLocker struct {
	client  redis.UniversalClient
	ttl     time.Duration
	backoff time.Duration
	logger  *logging.Logger
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, logger *logging.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLocker{
		client:  client,
		ttl:     ttl,
		backoff: defaultRetryBackoff,
		logger:  logger,
	}
}

// Lock polls SET NX until it wins or ctx ends. The TTL bounds how long a crashed holder blocks others.
func (l *RedisLocker) Lock(ctx context.Context, gameID string) (func(), error) {
	key := keyPrefix + gameID
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, token) })
	}, nil
}

func (l *RedisLocker) release(key, token string) {
	releaseCtx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
	defer cancel()

	n, err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Warn("release game lock failed", "key", key, "error", err)
		return
	}
	if n == 0 {
		l.logger.Warn("game lock expired before release", "key", key, "ttl", l.ttl.String())
	}
}
