package redisad

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// release only deletes the lock if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a SET NX PX mutex shared by every scraper process on the same Redis.
type Locker struct {
	c      *redis.Client
	ttl    time.Duration
	poll   time.Duration
	prefix string
}

func NewLocker(c *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{c: c, ttl: ttl, poll: 50 * time.Millisecond, prefix: "lock:"}
}

// Lock blocks until the key is acquired or ctx is done. The lock expires
// after ttl even if unlock is never called.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	k := l.prefix + key

	t := time.NewTicker(l.poll)
	defer t.Stop()
	for {
		ok, err := l.c.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", k, err)
		}
		if ok {
			return func() {
				// release must outlive a cancelled caller context
				rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := releaseScript.Run(rctx, l.c, []string{k}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
					log.Warn().Err(err).Str("key", k).Msg("redis unlock failed")
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
