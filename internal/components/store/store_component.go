// components/store/store_component.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/core"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
)

// Component owns the primary *sql.DB for the lifetime of one run.
type Component struct {
	*core.BaseComponent
	cfg   *Config
	log   logging.Logger
	store *Store
}

func NewComponent(cfg *Config, log logging.Logger) *Component {
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_PRIMARY_STORE),
		cfg:           cfg,
		log:           logging.OrNop(log),
	}
}

func (c *Component) Start(ctx context.Context) error {
	dialect, err := DialectFor(c.cfg.Driver)
	if err != nil {
		return err
	}
	dsn, err := dialect.DSN(c.cfg)
	if err != nil {
		return fmt.Errorf("build dsn failed: %w", err)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return fmt.Errorf("open %s failed: %w", dialect.Name(), err)
	}
	db.SetMaxOpenConns(c.cfg.MaxOpenConns)
	db.SetMaxIdleConns(c.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(c.cfg.ConnMaxLife)
	if c.cfg.ConnMaxIdle > 0 {
		db.SetConnMaxIdleTime(c.cfg.ConnMaxIdle)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping %s failed: %w", dialect.Name(), err)
	}

	c.store = New(db, dialect, c.cfg)
	c.SetActive(true)
	c.log.Info(ctx, "primary store connected",
		zap.String("driver", dialect.Name()),
		zap.String("address", c.cfg.Address()),
		zap.String("database", c.cfg.Database),
	)
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	defer c.SetActive(false)
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	c.log.Info(ctx, "primary store closed")
	return err
}

func (c *Component) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if c.store == nil {
		return fmt.Errorf("store not initialized")
	}
	return c.store.db.Ping()
}

// Store returns the open store, nil before Start.
func (c *Component) Store() *Store { return c.store }
