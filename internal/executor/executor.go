// Package executor runs a batch of maintenance tasks one after another and
// turns every outcome, including panics, into a TaskResult.
package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/task"
)

// Recorder receives per-task measurements.
type Recorder interface {
	ObserveTask(task, outcome string, elapsed time.Duration)
	ObserveRemoved(task string, n int64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTask(string, string, time.Duration) {}
func (nopRecorder) ObserveRemoved(string, int64)              {}

type Executor struct {
	registry *task.Registry
	log      logging.Logger
	tracer   trace.Tracer
	recorder Recorder
	now      func() time.Time
}

type Option func(*Executor)

func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Executor) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithClock replaces the time source handed to tasks as Env.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

func New(registry *task.Registry, log logging.Logger, opts ...Option) *Executor {
	e := &Executor{
		registry: registry,
		log:      logging.OrNop(log),
		tracer:   noop.NewTracerProvider().Tracer(consts.APP_NAME),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Run executes ids in order and returns exactly one result per id. A
// failing or panicking task is recorded and the batch continues. Once ctx
// is done, the remaining tasks are recorded as failed without running.
func (e *Executor) Run(ctx context.Context, h conn.Handle, ids []string, params task.Params) []model.TaskResult {
	results := make([]model.TaskResult, 0, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			for _, rest := range ids[i:] {
				results = append(results, model.Failed(rest, "canceled before start: "+err.Error()))
				e.recorder.ObserveTask(rest, string(model.StatusFailed), 0)
			}
			e.log.Warn(ctx, "batch interrupted", zap.Int("skipped", len(ids)-i), zap.Error(err))
			break
		}
		results = append(results, e.runOne(ctx, h, id, params, results))
	}
	return results
}

func (e *Executor) runOne(ctx context.Context, h conn.Handle, id string, params task.Params, prior []model.TaskResult) model.TaskResult {
	log := e.log.With(zap.String(consts.KEY_TaskID, id))
	ctx, span := e.tracer.Start(ctx, "task "+id, trace.WithAttributes(attribute.String("dbkeeper.task", id)))
	defer span.End()

	handler, ok := e.registry.Lookup(id)
	if !ok {
		res := model.Failed(id, "unknown task id")
		e.finish(ctx, log, span, res)
		return res
	}

	env := task.Env{
		Handle: h,
		Params: params,
		Prior:  append([]model.TaskResult(nil), prior...),
		Now:    e.now().UTC(),
		Log:    log,
	}
	log.Info(ctx, "task started")
	start := time.Now()
	payload, err := e.invoke(ctx, handler, env)
	elapsed := time.Since(start)

	var res model.TaskResult
	if err != nil {
		res = model.Failed(id, err.Error())
	} else {
		res = model.Succeeded(id, payload)
	}
	res = res.WithDuration(elapsed)
	e.finish(ctx, log, span, res)
	return res
}

// invoke converts a panic inside the handler into an error.
func (e *Executor) invoke(ctx context.Context, h task.Handler, env task.Env) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			env.Log.Error(ctx, "task panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			payload, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Execute(ctx, env)
}

func (e *Executor) finish(ctx context.Context, log logging.Logger, span trace.Span, res model.TaskResult) {
	e.recorder.ObserveTask(res.TaskID, string(res.Status), res.Duration)
	if res.OK() {
		if n, ok := res.Count(); ok {
			e.recorder.ObserveRemoved(res.TaskID, n)
			span.SetAttributes(attribute.Int64("dbkeeper.rows", n))
		}
		span.SetStatus(codes.Ok, "")
		log.Info(ctx, "task finished", zap.Duration("duration", res.Duration), zap.Any("result", res.Payload))
		return
	}
	span.SetStatus(codes.Error, res.Error)
	log.Error(ctx, "task failed", zap.Duration("duration", res.Duration), zap.Error(errs.New(errs.KindTask, res.Error)))
}
