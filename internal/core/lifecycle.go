// core/lifecycle.go
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
)

// LifecycleManager 生命周期管理器
type LifecycleManager struct {
	container      *Container
	log            logging.Logger
	mutex          sync.Mutex
	started        []Component
	shutdownCalled bool
	timeout        time.Duration
}

// NewLifecycleManager 创建新的生命周期管理器
func NewLifecycleManager(container *Container, log logging.Logger) *LifecycleManager {
	return &LifecycleManager{
		container: container,
		log:       logging.OrNop(log),
		timeout:   30 * time.Second,
	}
}

// StartAll 启动所有组件. An Optional component that fails to start is
// logged and left inactive; any other failure stops what was started.
func (lm *LifecycleManager) StartAll(ctx context.Context) error {
	components, err := lm.container.SortComponentsByDependencies()
	if err != nil {
		return fmt.Errorf("failed to sort components: %w", err)
	}

	for _, comp := range components {
		if comp.IsActive() {
			continue
		}
		if err := lm.startOne(ctx, comp); err != nil {
			if isOptional(comp) {
				lm.log.Warn(ctx, "optional component unavailable", zap.String("component", comp.Name()), zap.Error(err))
				continue
			}
			lm.stopStarted(context.Background())
			return fmt.Errorf("failed to start component %s: %w", comp.Name(), err)
		}
	}
	return nil
}

// Start starts a single registered component after its dependencies.
func (lm *LifecycleManager) Start(ctx context.Context, name string) error {
	comp, err := lm.container.Resolve(name)
	if err != nil {
		return err
	}
	if comp.IsActive() {
		return nil
	}
	for _, dep := range comp.Dependencies() {
		if err := lm.Start(ctx, dep); err != nil {
			return fmt.Errorf("dependency %s of %s: %w", dep, name, err)
		}
	}
	return lm.startOne(ctx, comp)
}

func (lm *LifecycleManager) startOne(ctx context.Context, comp Component) error {
	lm.mutex.Lock()
	stopped := lm.shutdownCalled
	lm.mutex.Unlock()
	if stopped {
		return fmt.Errorf("component %s: lifecycle already stopped", comp.Name())
	}
	startCtx, cancel := context.WithTimeout(ctx, lm.timeout)
	defer cancel()
	if err := comp.Start(startCtx); err != nil {
		return err
	}
	lm.mutex.Lock()
	lm.started = append(lm.started, comp)
	lm.mutex.Unlock()
	lm.log.Debug(ctx, "component started", zap.String("component", comp.Name()))
	return nil
}

// StopAll 停止所有活跃组件，按实际启动的逆序；多次调用只执行一次
func (lm *LifecycleManager) StopAll(ctx context.Context) {
	lm.mutex.Lock()
	if lm.shutdownCalled {
		lm.mutex.Unlock()
		return
	}
	lm.shutdownCalled = true
	lm.mutex.Unlock()

	lm.stopStarted(ctx)
}

func (lm *LifecycleManager) stopStarted(ctx context.Context) {
	lm.mutex.Lock()
	components := lm.started
	lm.started = nil
	lm.mutex.Unlock()

	for i := len(components) - 1; i >= 0; i-- {
		comp := components[i]
		if !comp.IsActive() {
			continue
		}
		stopCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		if err := comp.Stop(stopCtx); err != nil {
			lm.log.Error(ctx, "error stopping component", zap.String("component", comp.Name()), zap.Error(err))
		} else {
			lm.log.Debug(ctx, "component stopped", zap.String("component", comp.Name()))
		}
		cancel()
	}
}

func isOptional(c Component) bool {
	o, ok := c.(Optional)
	return ok && o.Optional()
}
