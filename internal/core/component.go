// Package core holds the component container and its lifecycle manager.
package core

import (
	"context"
	"fmt"
	"sync"
)

// Component 定义组件的基本接口
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	HealthCheck() error
	Dependencies() []string
	IsActive() bool
}

// Optional marks a component whose start failure degrades the run
// instead of aborting it.
type Optional interface {
	Optional() bool
}

// BaseComponent 提供组件的基础实现
type BaseComponent struct {
	name   string
	deps   []string
	mu     sync.RWMutex
	active bool
}

// NewBaseComponent 创建基础组件
func NewBaseComponent(name string, deps ...string) *BaseComponent {
	return &BaseComponent{name: name, deps: deps}
}

func (c *BaseComponent) Name() string {
	return c.name
}

func (c *BaseComponent) Dependencies() []string {
	return c.deps
}

func (c *BaseComponent) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *BaseComponent) SetActive(active bool) {
	c.mu.Lock()
	c.active = active
	c.mu.Unlock()
}

func (c *BaseComponent) Start(ctx context.Context) error {
	c.SetActive(true)
	return nil
}

func (c *BaseComponent) Stop(ctx context.Context) error {
	c.SetActive(false)
	return nil
}

func (c *BaseComponent) HealthCheck() error {
	if !c.IsActive() {
		return fmt.Errorf("component %s is not active", c.name)
	}
	return nil
}
