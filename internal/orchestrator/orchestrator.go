// Package orchestrator drives one maintenance run: validate the request,
// connect, execute the batch, summarize and always release.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/executor"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/task"
)

// Connector is the connection lifecycle the orchestrator needs;
// *conn.Manager implements it.
type Connector interface {
	Connect(ctx context.Context) (conn.Handle, error)
	Release(ctx context.Context)
}

type Request struct {
	Tasks  []string
	Params task.Params
}

// Summary is the terminal record of a run, produced on every path.
type Summary struct {
	RunID          string             `json:"run_id" yaml:"run_id"`
	StartedAt      time.Time          `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time          `json:"finished_at" yaml:"finished_at"`
	Tasks          []string           `json:"tasks" yaml:"tasks"`
	Results        []model.TaskResult `json:"results" yaml:"results"`
	Succeeded      int                `json:"succeeded" yaml:"succeeded"`
	Failed         int                `json:"failed" yaml:"failed"`
	CacheAvailable bool               `json:"cache_available" yaml:"cache_available"`
	States         []State            `json:"states" yaml:"states"`
}

// Final returns the last state reached.
func (s Summary) Final() State {
	if len(s.States) == 0 {
		return StateIdle
	}
	return s.States[len(s.States)-1]
}

type Orchestrator struct {
	registry  *task.Registry
	executor  *executor.Executor
	connector Connector
	log       logging.Logger
	now       func() time.Time
}

func New(registry *task.Registry, exec *executor.Executor, connector Connector, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		executor:  exec,
		connector: connector,
		log:       logging.OrNop(log),
		now:       time.Now,
	}
}

// Run executes req. The returned error is non-nil only for fatal outcomes
// (validation or primary connection); task failures live in the summary.
// Connections are released on every path, panics included.
func (o *Orchestrator) Run(ctx context.Context, req Request) (sum Summary, err error) {
	sum = Summary{
		RunID:     uuid.NewString(),
		StartedAt: o.now().UTC(),
		States:    []State{StateIdle},
	}
	log := o.log.With(zap.String(consts.KEY_RunID, sum.RunID))

	defer func() {
		o.connector.Release(context.WithoutCancel(ctx))
		sum.States = append(sum.States, StateClosed)
		sum.FinishedAt = o.now().UTC()
		log.Info(ctx, "run closed",
			zap.Int("succeeded", sum.Succeeded),
			zap.Int("failed", sum.Failed),
			zap.Duration("elapsed", sum.FinishedAt.Sub(sum.StartedAt)),
		)
	}()

	ids := o.registry.Expand(req.Tasks)
	sum.Tasks = ids
	if err := o.registry.Validate(ids); err != nil {
		log.Error(ctx, "request rejected", zap.Error(err))
		return sum, err
	}
	params := req.Params.WithDefaults()
	if err := params.Validate(); err != nil {
		log.Error(ctx, "request rejected", zap.Error(err))
		return sum, err
	}
	params.RunID = sum.RunID
	sum.States = append(sum.States, StateValidated)

	h, err := o.connector.Connect(ctx)
	if err != nil {
		log.Error(ctx, "primary store unreachable", zap.Error(err))
		return sum, err
	}
	_, sum.CacheAvailable = h.CacheClient()
	sum.States = append(sum.States, StateConnected)
	log.Info(ctx, "run started", zap.Strings("tasks", ids), zap.Bool("cache", sum.CacheAvailable))

	sum.Results = o.executor.Run(ctx, h, ids, params)
	sum.States = append(sum.States, StateExecuted)

	for _, r := range sum.Results {
		if r.OK() {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}
	sum.States = append(sum.States, StateReported)
	return sum, nil
}

// ExitCode maps a run outcome to the process exit status: 0 when the batch
// ran (even with failed tasks), 1 when the run was aborted.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
