package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
)

type cleanRedis struct{}

func (cleanRedis) Descriptor() Descriptor {
	return Descriptor{
		ID:            consts.TASK_CLEAN_REDIS,
		RequiresCache: true,
		Description:   "delete cache keys matching the configured glob pattern",
	}
}

func (cleanRedis) Execute(ctx context.Context, env Env) (any, error) {
	log := env.logger().With(zap.String("pattern", env.Params.RedisPattern))

	switch c := env.Handle.Cache.(type) {
	case conn.CachePresent:
		n, err := c.Client.DeleteMatching(ctx, env.Params.RedisPattern, env.Params.RedisScanCount)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "cache keys deleted", zap.Int64("keys", n))
		return n, nil
	case conn.CacheAbsent:
		log.Info(ctx, "cache unavailable, nothing to clean", zap.NamedError("reason", c.Reason))
		return int64(0), nil
	default:
		log.Info(ctx, "cache not configured, nothing to clean")
		return int64(0), nil
	}
}
