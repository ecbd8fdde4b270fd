// config/schema.go
package config

import (
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/cache"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/metrics"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/telemetry"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/task"
)

// AppConfig 应用程序配置结构
type AppConfig struct {
	APPInfo     *APPInfo               `yaml:"app_info" json:"app_info"`
	Logging     *logging.LoggingConfig `yaml:"logging" json:"logging"`
	Database    *store.Config          `yaml:"database" json:"database"`
	Redis       *cache.Config          `yaml:"redis" json:"redis"`
	Maintenance *task.Params           `yaml:"maintenance" json:"maintenance"`
	Metrics     *metrics.Config        `yaml:"metrics" json:"metrics"`
	Telemetry   *telemetry.Config      `yaml:"telemetry" json:"telemetry"`
}

type APPInfo struct {
	APPName string `yaml:"app_name" json:"app_name"`
	ENV     string `yaml:"env" json:"env"`
}

// Default is the configuration used when no file is present: a local
// postgres, a local redis tried on a best-effort basis, console logging.
func Default() *AppConfig {
	params := task.DefaultParams()
	return &AppConfig{
		APPInfo:     &APPInfo{APPName: consts.APP_NAME, ENV: "development"},
		Logging:     &logging.LoggingConfig{Level: "INFO", Format: "console", Output: "stdout"},
		Database:    &store.Config{Driver: store.DriverPostgres},
		Redis:       &cache.Config{Enabled: true},
		Maintenance: &params,
		Metrics:     &metrics.Config{},
		Telemetry:   &telemetry.Config{},
	}
}

// fillNil replaces sections a file explicitly nulled out.
func (c *AppConfig) fillNil() {
	d := Default()
	if c.APPInfo == nil {
		c.APPInfo = d.APPInfo
	}
	if c.Logging == nil {
		c.Logging = d.Logging
	}
	if c.Database == nil {
		c.Database = d.Database
	}
	if c.Redis == nil {
		c.Redis = d.Redis
	}
	if c.Maintenance == nil {
		c.Maintenance = d.Maintenance
	}
	if c.Metrics == nil {
		c.Metrics = d.Metrics
	}
	if c.Telemetry == nil {
		c.Telemetry = d.Telemetry
	}
}
