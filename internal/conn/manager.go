package conn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/cache"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/core"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
)

var errCacheDisabled = errors.New("cache disabled by configuration")

// Manager owns the store and cache components. Release stops whatever was
// started, in reverse order, exactly once.
type Manager struct {
	cfg       Config
	log       logging.Logger
	container *core.Container
	lifecycle *core.LifecycleManager

	storeFactory *store.Factory
	primary      *store.Component
	cache        *cache.Component

	mu     sync.Mutex
	handle Handle
}

func NewManager(cfg Config, log logging.Logger) (*Manager, error) {
	log = logging.OrNop(log)
	cacheCfg := cfg.Cache
	cache.SetDefaults(&cacheCfg)

	m := &Manager{
		cfg:          Config{Primary: cfg.Primary, Cache: cacheCfg},
		log:          log,
		container:    core.NewContainer(),
		storeFactory: store.NewFactory(log),
		handle:       Handle{Cache: CacheAbsent{Reason: errors.New("cache not connected")}},
	}
	m.lifecycle = core.NewLifecycleManager(m.container, log)
	m.cache = cache.NewComponent(&m.cfg.Cache, log)

	if err := m.container.Register(m.cache); err != nil {
		return nil, err
	}
	return m, nil
}

// ConnectPrimary opens and pings the relational store. An incomplete config
// is a validation error; any other failure is a connection error. Both are
// fatal to the run.
func (m *Manager) ConnectPrimary(ctx context.Context) (*store.Store, error) {
	if m.primary == nil {
		comp, err := m.storeFactory.Create(&m.cfg.Primary)
		if err != nil {
			return nil, err
		}
		if err := m.container.Register(comp); err != nil {
			return nil, err
		}
		m.primary = comp
	}
	if err := m.lifecycle.Start(ctx, consts.COMPONENT_PRIMARY_STORE); err != nil {
		return nil, errs.Wrap(errs.KindConnection, fmt.Sprintf("connect %s at %s", m.cfg.Primary.Driver, m.cfg.Primary.Address()), err)
	}
	m.mu.Lock()
	m.handle.Store = m.primary.Store()
	m.mu.Unlock()
	return m.primary.Store(), nil
}

// ConnectCache tries the cache. It never fails the run: an unreachable or
// disabled cache yields CacheAbsent.
func (m *Manager) ConnectCache(ctx context.Context) Cache {
	var c Cache
	switch {
	case !m.cfg.Cache.Enabled:
		c = CacheAbsent{Reason: errCacheDisabled}
	default:
		if err := m.lifecycle.Start(ctx, consts.COMPONENT_CACHE); err != nil {
			m.log.Warn(ctx, "cache unavailable, continuing without it",
				zap.Strings("addrs", m.cfg.Cache.Addresses),
				zap.Error(err),
			)
			c = CacheAbsent{Reason: err}
		} else {
			c = CachePresent{Client: m.cache.Client()}
		}
	}
	m.mu.Lock()
	m.handle.Cache = c
	m.mu.Unlock()
	return c
}

// Connect opens the primary store, then the cache.
func (m *Manager) Connect(ctx context.Context) (Handle, error) {
	if _, err := m.ConnectPrimary(ctx); err != nil {
		return Handle{}, err
	}
	m.ConnectCache(ctx)
	return m.Handle(), nil
}

func (m *Manager) Handle() Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// Release closes the cache, then the store. Safe to call repeatedly and on
// a manager that never connected.
func (m *Manager) Release(ctx context.Context) {
	m.lifecycle.StopAll(ctx)
	m.mu.Lock()
	m.handle = Handle{Cache: CacheAbsent{Reason: errors.New("connections released")}}
	m.mu.Unlock()
}
