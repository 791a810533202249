package repos

import (
	"context"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"

	"shopfront/internal/domain"
)

// flowStateTTL bounds how long a finished lifecycle stays readable.
const flowStateTTL = 24 * time.Hour

func flowStateKey(key string) string { return fmt.Sprintf("shopfront:flow:state:%s", key) }
func flowLockKey(key string) string  { return fmt.Sprintf("shopfront:flow:lock:%s", key) }

// RedisFlowRepo stores request lifecycles in redis. The in-flight guard is a
// SETNX lock that expires after the caller's ttl.
type RedisFlowRepo struct{ rdb *rd.Client }

func NewRedisFlowRepo(rdb *rd.Client) *RedisFlowRepo { return &RedisFlowRepo{rdb: rdb} }

func (r *RedisFlowRepo) Begin(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, flowLockKey(key), "1", ttl).Result()
	if err != nil || !ok {
		return false, err
	}
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, flowStateKey(key), "state", string(domain.FlowProcessing), "message", "")
	pipe.Expire(ctx, flowStateKey(key), flowStateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		_ = r.rdb.Del(ctx, flowLockKey(key)).Err()
		return false, err
	}
	return true, nil
}

func (r *RedisFlowRepo) Finish(ctx context.Context, key string, l domain.Lifecycle) error {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, flowStateKey(key), "state", string(l.State), "message", l.Message)
	pipe.Expire(ctx, flowStateKey(key), flowStateTTL)
	pipe.Del(ctx, flowLockKey(key))
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisFlowRepo) Get(ctx context.Context, key string) (domain.Lifecycle, error) {
	m, err := r.rdb.HGetAll(ctx, flowStateKey(key)).Result()
	if err != nil {
		return domain.Lifecycle{}, err
	}
	if len(m) == 0 || m["state"] == "" {
		return domain.Lifecycle{State: domain.FlowIdle}, nil
	}
	return domain.Lifecycle{State: domain.FlowState(m["state"]), Message: m["message"]}, nil
}
