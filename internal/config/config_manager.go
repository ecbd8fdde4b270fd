// config/config_manager.go
package config

import (
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/task"
)

type ConfigManager struct {
	configLoader *Loader
	validator    *Validator
	appConfig    *AppConfig
}

func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configLoader: NewLoader(configPath),
		validator:    NewValidator(),
	}
}

// Loader exposes the loader so callers can swap the environment source.
func (cf *ConfigManager) Loader() *Loader { return cf.configLoader }

func (cf *ConfigManager) LoadConfig() error {
	cfg, err := cf.configLoader.LoadConfig()
	if err != nil {
		return err
	}
	if err := cf.validator.ValidateAppConfig(cfg); err != nil {
		return err
	}
	cf.appConfig = cfg
	return nil
}

func (cf *ConfigManager) GetConfig() *AppConfig {
	return cf.appConfig
}

// Connection returns a copy of the connection settings for one run.
func (cf *ConfigManager) Connection() conn.Config {
	return conn.Config{Primary: *cf.appConfig.Database, Cache: *cf.appConfig.Redis}
}

// TaskParams returns a copy of the maintenance parameters.
func (cf *ConfigManager) TaskParams() task.Params {
	p := *cf.appConfig.Maintenance
	p.VacuumTables = append([]string(nil), p.VacuumTables...)
	p.BackupTables = append([]string(nil), p.BackupTables...)
	if p.AuditRetentionDays != nil {
		p.AuditRetentionDays = task.Days(*p.AuditRetentionDays)
	}
	if p.WorkspaceRetentionDays != nil {
		p.WorkspaceRetentionDays = task.Days(*p.WorkspaceRetentionDays)
	}
	return p
}
