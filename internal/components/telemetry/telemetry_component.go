// components/telemetry/telemetry_component.go
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/core"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
)

// Component provides the tracer used for per-task spans. It does not
// install itself as the global provider; callers ask for Tracer explicitly.
type Component struct {
	*core.BaseComponent
	cfg      *Config
	log      logging.Logger
	tp       *sdktrace.TracerProvider
	closeOut io.Closer
}

func NewComponent(cfg *Config, log logging.Logger) *Component {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_TELEMETRY),
		cfg:           cfg,
		log:           logging.OrNop(log),
	}
}

func (c *Component) Optional() bool { return true }

func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		return errors.New("telemetry disabled")
	}
	c.cfg.applyDefaults()

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithAttributes(semconv.ServiceName(c.cfg.ServiceName)),
	)
	if err != nil {
		return fmt.Errorf("resource init: %w", err)
	}

	exp, err := c.exporter(ctx)
	if err != nil {
		return fmt.Errorf("trace exporter init: %w", err)
	}

	c.tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	c.SetActive(true)
	c.log.Info(ctx, "telemetry started",
		zap.String("exporter", string(c.cfg.Exporter)),
		zap.Float64("sample_ratio", c.cfg.SampleRatio),
	)
	return nil
}

func (c *Component) exporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch c.cfg.Exporter {
	case ExporterStdout:
		var w io.Writer = os.Stdout
		if c.cfg.StdoutFile != "" {
			f, err := os.OpenFile(c.cfg.StdoutFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, err
			}
			w, c.closeOut = f, f
		}
		opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
		if c.cfg.StdoutPretty {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	case ExporterOTLP:
		if c.cfg.OTLP == nil || c.cfg.OTLP.Endpoint == "" {
			return nil, errors.New("otlp exporter selected but otlp.endpoint empty")
		}
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(c.cfg.OTLP.Endpoint),
			otlptracegrpc.WithTimeout(c.cfg.otlpTimeout()),
		}
		if c.cfg.OTLP.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported exporter: %s", c.cfg.Exporter)
	}
}

// Stop flushes pending spans.
func (c *Component) Stop(ctx context.Context) error {
	defer c.SetActive(false)
	if c.tp == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := c.tp.Shutdown(shutdownCtx)
	c.tp = nil
	if c.closeOut != nil {
		_ = c.closeOut.Close()
		c.closeOut = nil
	}
	return err
}

// Provider returns the running provider, or a no-op one.
func (c *Component) Provider() trace.TracerProvider {
	if c == nil || c.tp == nil {
		return noop.NewTracerProvider()
	}
	return c.tp
}

// Tracer returns a tracer from the provider, or a no-op tracer when
// telemetry is not running.
func (c *Component) Tracer(name string) trace.Tracer {
	return c.Provider().Tracer(name)
}
