package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey はリマインダースイープのロックキー。
const DefaultKey = "makina-ime:reminder-sweep:lock"

// releaseScript は自分が取得したロックの場合のみ削除する。
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis はSET NX PXによる排他ロック。
// TTLを過ぎたロックは自動的に失効するため、ワーカーが落ちても次回の実行は妨げられない。
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis はRedisのURLからロックを生成する。
func NewRedis(url, key string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("RedisのURL解析に失敗: %w", err)
	}
	return NewRedisWithClient(redis.NewClient(opts), key, ttl), nil
}

// Connect はRedisのURLからロックを生成し、疎通を確認する。
// 接続できない場合はクライアントを閉じてエラーを返す。
func Connect(ctx context.Context, url, key string, ttl time.Duration) (*Redis, error) {
	l, err := NewRedis(url, key, ttl)
	if err != nil {
		return nil, err
	}
	if err := l.Ping(ctx); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// NewRedisWithClient は既存のクライアントからロックを生成する。
func NewRedisWithClient(client *redis.Client, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key, ttl: ttl}
}

// Ping はRedisへの疎通を確認する。
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redisへの接続に失敗: %w", err)
	}
	return nil
}

// TryLock はロックの取得を1回だけ試みる。
// 他者が保持している場合はacquired=falseを返す。
func (r *Redis) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.New().String()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("ロックの取得に失敗: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("ロックの解放に失敗: %w", err)
		}
		return nil
	}
	return unlock, true, nil
}

// Close はRedisクライアントを閉じる。
func (r *Redis) Close() error {
	return r.client.Close()
}
