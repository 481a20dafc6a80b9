package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockNotAcquired 表示在等待时限内没有拿到锁。
var ErrLockNotAcquired = errors.New("user lock not acquired")

// UserLocker 为同一用户的动作分发提供互斥。
// Lock 返回的 unlock 必须调用，即使 ctx 已取消。
type UserLocker interface {
	Lock(ctx context.Context, userID uint) (unlock func(), err error)
}

type redisUserLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewUserLocker 创建基于 Redis SET NX 的用户锁；client 为 nil 时返回空实现。
func NewUserLocker(client *redis.Client, ttl, wait time.Duration) UserLocker {
	if client == nil {
		return NoopLocker{}
	}
	return &redisUserLocker{client: client, ttl: ttl, wait: wait}
}

// 只有持有者（value 相同）才能删除锁
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

func userLockKey(userID uint) string {
	return fmt.Sprintf("studylife:lock:dispatch:%d", userID)
}

func (l *redisUserLocker) Lock(ctx context.Context, userID uint) (func(), error) {
	key := userLockKey(userID)
	token := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = l.wait

	op := func() error {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to acquire user lock: %w", err))
		}
		if !ok {
			return ErrLockNotAcquired
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return func() {}, err
	}

	return func() {
		// 请求 ctx 可能已经结束，释放锁使用独立的短超时
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		unlockScript.Run(releaseCtx, l.client, []string{key}, token)
	}, nil
}

// NoopLocker 在未配置 Redis 时使用，不做任何互斥。
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, uint) (func(), error) {
	return func() {}, nil
}
