// config/loader.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
)

// Loader 配置加载器
type Loader struct {
	configPath string
	explicit   bool
	lookupEnv  func(string) (string, bool)
}

// NewLoader 创建配置加载器. An empty path means the default config.yaml,
// which may be absent; an explicit path must exist.
func NewLoader(configPath string) *Loader {
	l := &Loader{configPath: configPath, explicit: configPath != "", lookupEnv: os.LookupEnv}
	if configPath == "" {
		l.configPath = consts.DEFAULT_CONFIG_PATH
	}
	return l
}

// WithEnv replaces the environment lookup; tests pass a map-backed func.
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	l.lookupEnv = lookup
	return l
}

// LoadConfig reads the file over the defaults, then applies environment
// overrides.
func (l *Loader) LoadConfig() (*AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(l.configPath)
	switch {
	case err == nil:
		if err := decode(l.configPath, data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist) && !l.explicit:
		// no file: defaults plus environment
	default:
		return nil, errs.Wrap(errs.KindConfig, "failed to read config file", err)
	}
	cfg.fillNil()

	if err := l.mergeEnvVars(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *AppConfig) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errs.Wrap(errs.KindConfig, "failed to parse YAML config", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return errs.Wrap(errs.KindConfig, "failed to parse JSON config", err)
		}
	default:
		return errs.New(errs.KindConfig, fmt.Sprintf("unsupported config file format: %s", ext))
	}
	return nil
}

// mergeEnvVars 合并环境变量到配置中 (环境变量优先于文件)
func (l *Loader) mergeEnvVars(cfg *AppConfig) error {
	str := func(key string, dst *string) {
		if v, ok := l.lookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := l.lookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errs.Wrap(errs.KindConfig, fmt.Sprintf("%s must be an integer", key), err)
		}
		*dst = n
		return nil
	}

	db := cfg.Database
	str(consts.ENV_DB_DRIVER, &db.Driver)
	str(consts.ENV_DB_HOST, &db.Host)
	str(consts.ENV_DB_DATABASE, &db.Database)
	str(consts.ENV_DB_USERNAME, &db.User)
	str(consts.ENV_DB_PASSWORD, &db.Password)
	if err := num(consts.ENV_DB_PORT, &db.Port); err != nil {
		return err
	}

	rc := cfg.Redis
	host, port := rc.Host, rc.Port
	str(consts.ENV_REDIS_HOST, &rc.Host)
	str(consts.ENV_REDIS_PASSWORD, &rc.Password)
	if err := num(consts.ENV_REDIS_PORT, &rc.Port); err != nil {
		return err
	}
	if err := num(consts.ENV_REDIS_DB, &rc.DB); err != nil {
		return err
	}
	if rc.Host != host || rc.Port != port {
		// host/port from the environment replace any address list in the file
		rc.Addresses = nil
	}

	str(consts.ENV_REPORTS_DIR, &cfg.Maintenance.ReportsDir)
	return nil
}
