package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrLocked is returned by TryLock when another process holds the lock.
var ErrLocked = errors.New("lock is already held")

// unlockScript deletes the key only while it still holds our token.
const unlockScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`

// TryLock takes the lock named key with SET NX EX. The returned unlock
// function must be called to release it.
func TryLock(ctx context.Context, r *Redis, key string, ttl time.Duration) (unlock func(), err error) {
	key = keyPrefix + "lock:" + key
	token := randomToken()

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("cache lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		// Release even when ctx was cancelled.
		_ = r.client.Eval(context.Background(), unlockScript, []string{key}, token).Err()
	}, nil
}

func randomToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
