// Package cache reúne os usos de redis fora do bootstrap: locks curtos por recurso.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrNotObtained = errors.New("lock not obtained")

// libera só se o token ainda for nosso
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type Locker struct {
	rdb *redis.Client
}

// NewLocker aceita rdb nil; nesse caso Obtain sempre devolve um lock local.
func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{rdb: rdb}
}

type Lock struct {
	rdb   *redis.Client
	key   string
	token string
}

func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if l == nil || l.rdb == nil {
		return &Lock{key: key}, nil
	}

	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: obtain %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotObtained
	}
	return &Lock{rdb: l.rdb, key: key, token: token}, nil
}

func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("cache: release %s: %w", l.key, err)
	}
	return nil
}

func FinishLockKey(studioID, commandID uint) string {
	return fmt.Sprintf("lock:studio:%d:command:%d:finish", studioID, commandID)
}
