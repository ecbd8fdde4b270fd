package logging

import "fmt"

// setDefaults 设置默认配置值
func setDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if cfg.Format == "" {
		cfg.Format = "console"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
	if cfg.Output == "file" && cfg.FileConfig == nil {
		cfg.FileConfig = &FileConfig{Dir: "./logs", Filename: "dbkeeper"}
	}
	if rc := cfg.RotateConfig; rc != nil && rc.Enabled && rc.MaxSizeMB <= 0 {
		rc.MaxSizeMB = 100
	}
}

// validate performs explicit validation rules without applying hidden defaults.
func validate(cfg *LoggingConfig) error {
	switch cfg.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Format)
	}
	if cfg.RotateConfig != nil && cfg.RotateConfig.Enabled {
		if cfg.RotateConfig.MaxAge < 0 {
			return fmt.Errorf("logging.rotate_config.max_age must be >= 0")
		}
		if cfg.Output != "file" {
			return fmt.Errorf("logging.rotate_config requires output=file")
		}
	}
	return nil
}
