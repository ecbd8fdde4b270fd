// components/store/factory.go
package store

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Factory builds the primary store component from its config.
type Factory struct {
	log logging.Logger
}

func NewFactory(log logging.Logger) *Factory { return &Factory{log: log} }

// Create fills defaults in place and rejects partial configs; nothing is
// opened until the component starts.
func (f *Factory) Create(cfg *Config) (*Component, error) {
	if cfg == nil {
		return nil, errs.New(errs.KindValidation, "database config missing")
	}
	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewComponent(cfg, f.log), nil
}

// SetDefaults fills pool sizing, ports and schema per driver.
func SetDefaults(c *Config) {
	if c == nil {
		return
	}
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = DriverPostgres
	}
	if c.Driver == "postgresql" || c.Driver == "pgx" {
		c.Driver = DriverPostgres
	}
	if c.Port == 0 {
		switch c.Driver {
		case DriverPostgres:
			c.Port = 5432
		case DriverMySQL:
			c.Port = 3306
		}
	}
	if c.Schema == "" {
		switch c.Driver {
		case DriverPostgres:
			c.Schema = "public"
		case DriverMySQL:
			c.Schema = c.Database
		case DriverSQLite:
			c.Schema = "main"
		}
	}
	// maintenance statements run one at a time on a single session
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 1
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 1
	}
	if c.ConnMaxLife <= 0 {
		c.ConnMaxLife = 60 * time.Minute
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 5 * time.Second
	}
}

// Validate rejects partial configurations before any connection attempt.
func (c *Config) Validate() error {
	if c == nil {
		return errs.New(errs.KindValidation, "database config missing")
	}
	switch c.Driver {
	case DriverPostgres, DriverMySQL:
		if strings.TrimSpace(c.DSN) != "" {
			return nil
		}
		var missing []string
		if c.Host == "" {
			missing = append(missing, "host")
		}
		if c.Port <= 0 || c.Port > 65535 {
			missing = append(missing, "port")
		}
		if c.Database == "" {
			missing = append(missing, "database")
		}
		if c.User == "" {
			missing = append(missing, "user")
		}
		if len(missing) > 0 {
			return errs.New(errs.KindValidation, "database config incomplete: missing "+strings.Join(missing, ", "))
		}
	case DriverSQLite:
		if c.Database == "" && c.DSN == "" {
			return errs.New(errs.KindValidation, "sqlite requires database path")
		}
	default:
		return errs.New(errs.KindValidation, fmt.Sprintf("unsupported database driver %q", c.Driver))
	}
	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
