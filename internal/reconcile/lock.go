package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript 只释放自己持有的锁（token 匹配才删除）。
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLock 基于 SET NX PX 的咨询锁。
// 多副本部署时用来保证同一时刻只有一个副本跑对账；
// TTL 兜底：持有方崩溃后锁会自动过期。
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisLock{client: client, key: key, ttl: ttl}
}

// TryAcquire 尝试抢锁，抢不到返回 false（不阻塞等待）。
func (l *RedisLock) TryAcquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release 释放锁；只有自己持有的锁会被删除，过期后被他人持有的不受影响。
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	_, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Result()
	l.token = ""
	return err
}
