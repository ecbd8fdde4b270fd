// components/store/config.go
package store

import "time"

// Config describes the primary relational store. Either supply a full DSN
// or the connection pieces; sqlite only needs Database (a file path or
// ":memory:").
type Config struct {
	Driver   string            `yaml:"driver" json:"driver"` // postgres | mysql | sqlite
	DSN      string            `yaml:"dsn" json:"dsn"`
	Host     string            `yaml:"host" json:"host"`
	Port     int               `yaml:"port" json:"port"`
	User     string            `yaml:"user" json:"user"`
	Password string            `yaml:"password" json:"password"`
	Database string            `yaml:"database" json:"database"`
	Schema   string            `yaml:"schema" json:"schema"`
	Params   map[string]string `yaml:"params" json:"params"`

	MaxOpenConns int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLife  time.Duration `yaml:"conn_max_life" json:"conn_max_life"`
	ConnMaxIdle  time.Duration `yaml:"conn_max_idle" json:"conn_max_idle"`
	PingTimeout  time.Duration `yaml:"ping_timeout" json:"ping_timeout"`
}

// Address is host:port for network drivers and the file path for sqlite.
func (c *Config) Address() string {
	if c.Driver == DriverSQLite {
		return c.Database
	}
	if c.Host == "" {
		return ""
	}
	return joinHostPort(c.Host, c.Port)
}
