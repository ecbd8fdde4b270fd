// Package logging wraps zap behind a context-aware Logger interface.
// A logger is built once at the process boundary and handed to every
// component that needs one.
package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
)

// one frame for the interface method, one for logWithContext
const callerSkip = 2

// Logger 日志记录器接口
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...zap.Field)
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

// ZapLogger is the zap-backed Logger.
type ZapLogger struct {
	zapLogger *zap.Logger
}

// New builds a logger from configuration, applying defaults in place.
func New(cfg *LoggingConfig) (*ZapLogger, error) {
	if cfg == nil {
		cfg = &LoggingConfig{}
	}
	setDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}

	writeSyncer, err := buildWriteSyncer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create write syncer: %w", err)
	}

	core := zapcore.NewCore(buildEncoder(cfg.Format), writeSyncer, parseLevel(cfg.Level))
	if cfg.MirrorStdout && cfg.Output != "stdout" {
		core = zapcore.NewTee(core, zapcore.NewCore(buildEncoder("console"), zapcore.AddSync(os.Stdout), parseLevel(cfg.Level)))
	}
	return NewWithCore(core), nil
}

// NewWithCore wraps an existing zap core; tests pass an observer core here.
func NewWithCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{
		zapLogger: zap.New(core,
			zap.AddCaller(),
			zap.AddCallerSkip(callerSkip),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
	}
}

func buildEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func buildWriteSyncer(cfg *LoggingConfig) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	case "file":
		return buildFileWriteSyncer(cfg)
	default:
		return openAppend(cfg.Output)
	}
}

func buildFileWriteSyncer(cfg *LoggingConfig) (zapcore.WriteSyncer, error) {
	if cfg.FileConfig == nil {
		return nil, fmt.Errorf("file config is required when output is 'file'")
	}
	if err := os.MkdirAll(cfg.FileConfig.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile := filepath.Join(cfg.FileConfig.Dir, cfg.FileConfig.Filename+".log")

	if rc := cfg.RotateConfig; rc != nil && rc.Enabled {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    rc.MaxSizeMB,
			MaxAge:     int(rc.MaxAge.Hours() / 24),
			MaxBackups: rc.MaxBackups,
			Compress:   true,
			LocalTime:  true,
		}), nil
	}
	return openAppend(logFile)
}

func openAppend(path string) (zapcore.WriteSyncer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return zapcore.AddSync(file), nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithContext(ctx, zapcore.DebugLevel, msg, fields...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithContext(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithContext(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithContext(ctx, zapcore.ErrorLevel, msg, fields...)
}

// With 创建带有附加字段的新logger
func (l *ZapLogger) With(fields ...zap.Field) Logger {
	return &ZapLogger{zapLogger: l.zapLogger.With(fields...)}
}

func (l *ZapLogger) Sync() error {
	if l.zapLogger == nil {
		return nil
	}
	return l.zapLogger.Sync()
}

// logWithContext 注入 OTel trace/span 信息（仅当存在有效 span）
func (l *ZapLogger) logWithContext(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	if l.zapLogger == nil {
		return
	}
	if ctx != nil {
		sc := trace.SpanContextFromContext(ctx)
		if sc.IsValid() {
			if !hasField(fields, consts.KEY_TraceID) {
				fields = append(fields, zap.String(consts.KEY_TraceID, sc.TraceID().String()))
			}
			if !hasField(fields, consts.KEY_SpanID) {
				fields = append(fields, zap.String(consts.KEY_SpanID, sc.SpanID().String()))
			}
		}
	}
	if ce := l.zapLogger.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func hasField(fields []zap.Field, key string) bool {
	for _, f := range fields {
		if f.Key == key {
			return true
		}
	}
	return false
}
