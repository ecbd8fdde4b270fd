// components/logging/config.go
package logging

import "time"

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level        string        `yaml:"level" json:"level"`
	Format       string        `yaml:"format" json:"format"`
	Output       string        `yaml:"output" json:"output"`
	MirrorStdout bool          `yaml:"mirror_stdout" json:"mirror_stdout"` // file output also echoed to stdout
	FileConfig   *FileConfig   `yaml:"file_config,omitempty" json:"file_config,omitempty"`
	RotateConfig *RotateConfig `yaml:"rotate_config,omitempty" json:"rotate_config,omitempty"`
}

// FileConfig 文件输出配置
type FileConfig struct {
	Dir      string `yaml:"dir" json:"dir"`
	Filename string `yaml:"filename" json:"filename"`
}

// RotateConfig 日志轮转配置 (lumberjack)
type RotateConfig struct {
	Enabled    bool          `yaml:"enabled" json:"enabled"`
	MaxAge     time.Duration `yaml:"max_age" json:"max_age"`
	MaxSizeMB  int           `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int           `yaml:"max_backups" json:"max_backups"`
}
