package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/core"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
)

// Component owns a private registry and the task metrics.
type Component struct {
	*core.BaseComponent
	cfg      *Config
	log      logging.Logger
	registry *prometheus.Registry
	server   *http.Server
	tracing  trace.TracerProvider

	taskRuns     *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
	itemsRemoved *prometheus.CounterVec
}

func NewComponent(cfg *Config, log logging.Logger) *Component {
	if cfg == nil {
		cfg = &Config{}
	}
	setDefaults(cfg)
	c := &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_METRICS),
		cfg:           cfg,
		log:           logging.OrNop(log),
		registry:      prometheus.NewRegistry(),
		tracing:       noop.NewTracerProvider(),
	}
	c.taskRuns = c.newCounter("task_runs_total", "Maintenance task invocations by outcome.", []string{"task", "outcome"})
	c.taskDuration = c.newHistogram("task_duration_seconds", "Maintenance task wall time.", []string{"task"},
		prometheus.ExponentialBuckets(0.01, 4, 8))
	c.itemsRemoved = c.newCounter("items_removed_total", "Rows or keys removed by cleanup tasks.", []string{"task"})
	return c
}

func (c *Component) Optional() bool { return true }

// SetTracerProvider traces scrapes and gateway pushes; call before Start.
func (c *Component) SetTracerProvider(tp trace.TracerProvider) {
	if tp != nil {
		c.tracing = tp
	}
}

func (c *Component) Start(ctx context.Context) error {
	if c.cfg.CollectGoMetrics {
		_ = c.registry.Register(prometheus.NewGoCollector())
	}
	if c.cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle(c.cfg.Path, otelhttp.NewHandler(
			promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}),
			"metrics",
			otelhttp.WithTracerProvider(c.tracing),
		))
		c.server = &http.Server{
			Addr:              c.cfg.Address,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			c.log.Info(ctx, "metrics listening", zap.String("addr", c.cfg.Address+c.cfg.Path))
			if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				c.log.Error(ctx, "metrics server error", zap.Error(err))
			}
		}()
	}
	c.SetActive(true)
	return nil
}

// Stop pushes the final values to the gateway, then shuts the listener.
func (c *Component) Stop(ctx context.Context) error {
	defer c.SetActive(false)
	var firstErr error
	if err := c.Push(ctx); err != nil {
		c.log.Warn(ctx, "metrics push failed", zap.Error(err))
		firstErr = err
	}
	if c.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.server.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("metrics server shutdown: %w", err)
		}
	}
	return firstErr
}

// Push sends the registry to the configured Pushgateway; no-op without one.
func (c *Component) Push(ctx context.Context) error {
	if c.cfg.PushGateway == "" {
		return nil
	}
	client := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport, otelhttp.WithTracerProvider(c.tracing)),
	}
	return push.New(c.cfg.PushGateway, c.cfg.Job).
		Client(client).
		Gatherer(c.registry).
		PushContext(ctx)
}

// ObserveTask records one finished task invocation.
func (c *Component) ObserveTask(task, outcome string, elapsed time.Duration) {
	c.taskRuns.WithLabelValues(task, outcome).Inc()
	c.taskDuration.WithLabelValues(task).Observe(elapsed.Seconds())
}

// ObserveRemoved adds the number of rows or keys a cleanup task removed.
func (c *Component) ObserveRemoved(task string, n int64) {
	if n > 0 {
		c.itemsRemoved.WithLabelValues(task).Add(float64(n))
	}
}

func (c *Component) newCounter(name, help string, labels []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.cfg.Namespace,
		Name:      name,
		Help:      help,
	}, labels)
	c.registry.MustRegister(cv)
	return cv
}

func (c *Component) newHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.cfg.Namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	c.registry.MustRegister(hv)
	return hv
}
