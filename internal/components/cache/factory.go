// components/cache/factory.go
package cache

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// SetDefaults fills addresses, pool sizing and timeouts.
func SetDefaults(c *Config) {
	if c == nil {
		return
	}
	c.Mode = strings.ToLower(c.Mode)
	if c.Mode == "" {
		c.Mode = "single"
	}
	if len(c.Addresses) == 0 {
		host, port := c.Host, c.Port
		if host == "" {
			host = "127.0.0.1"
		}
		switch c.Mode {
		case "single":
			if port == 0 {
				port = 6379
			}
			c.Addresses = []string{net.JoinHostPort(host, strconv.Itoa(port))}
		case "sentinel":
			if port == 0 {
				port = 26379
			}
			c.Addresses = []string{net.JoinHostPort(host, strconv.Itoa(port))}
		case "cluster":
			c.Addresses = []string{"127.0.0.1:7000", "127.0.0.1:7001", "127.0.0.1:7002"}
		}
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 4
	}
	if c.MinIdleConns < 0 || c.MinIdleConns > c.PoolSize {
		c.MinIdleConns = 0
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.DB < 0 {
		c.DB = 0
	}
}

func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	switch c.Mode {
	case "single", "cluster":
	case "sentinel":
		if c.SentinelMaster == "" {
			return fmt.Errorf("sentinel mode requires sentinel_master")
		}
	default:
		return fmt.Errorf("unknown redis mode: %s", c.Mode)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("redis port out of range: %d", c.Port)
	}
	return nil
}
