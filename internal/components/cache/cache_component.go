// components/cache/cache_component.go
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/core"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
)

// Component owns the redis client. It is optional: a failed start leaves
// the run without a cache rather than aborting it.
type Component struct {
	*core.BaseComponent
	cfg    *Config
	log    logging.Logger
	client *Client
}

func NewComponent(cfg *Config, log logging.Logger) *Component {
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_CACHE),
		cfg:           cfg,
		log:           logging.OrNop(log),
	}
}

func (c *Component) Optional() bool { return true }

func (c *Component) Start(ctx context.Context) error {
	if c.cfg == nil {
		return errors.New("redis config nil")
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if len(c.cfg.Addresses) == 0 {
		return fmt.Errorf("redis addresses empty")
	}

	rc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        c.cfg.Addresses,
		DB:           c.cfg.DB,
		Username:     c.cfg.Username,
		Password:     c.cfg.Password,
		MasterName:   c.cfg.SentinelMaster,
		PoolSize:     c.cfg.PoolSize,
		MinIdleConns: c.cfg.MinIdleConns,
		DialTimeout:  c.cfg.DialTimeout,
		ReadTimeout:  c.cfg.ReadTimeout,
		WriteTimeout: c.cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.client = NewClient(rc)
	c.SetActive(true)
	c.log.Info(ctx, "cache connected",
		zap.String("mode", c.cfg.Mode),
		zap.Strings("addrs", c.cfg.Addresses),
		zap.Int("db", c.cfg.DB),
	)
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	defer c.SetActive(false)
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	c.log.Info(ctx, "cache closed")
	return err
}

func (c *Component) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if c.client == nil {
		return fmt.Errorf("redis client nil")
	}
	return c.client.Ping(context.Background())
}

// Client returns the connected client, nil before a successful Start.
func (c *Component) Client() *Client { return c.client }
