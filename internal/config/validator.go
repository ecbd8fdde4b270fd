// config/validator.go
package config

import (
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/cache"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
)

// Validator 配置验证器
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAppConfig applies per-section defaults and rejects incomplete
// connection settings before anything is dialed.
func (v *Validator) ValidateAppConfig(cfg *AppConfig) error {
	if cfg == nil {
		return errs.New(errs.KindConfig, "config cannot be nil")
	}
	store.SetDefaults(cfg.Database)
	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	cache.SetDefaults(cfg.Redis)
	if err := cfg.Redis.Validate(); err != nil {
		return errs.Wrap(errs.KindValidation, "redis config", err)
	}
	*cfg.Maintenance = cfg.Maintenance.WithDefaults()
	return cfg.Maintenance.Validate()
}
