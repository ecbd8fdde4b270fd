package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/report"
)

type generateReport struct{}

func (generateReport) Descriptor() Descriptor {
	return Descriptor{
		ID:          consts.TASK_GENERATE_REPORT,
		Description: "write a data report with table sizes, row counts, connections and cache stats",
	}
}

// Execute snapshots the system and writes the report file. The report's
// task_results carry every earlier result of the batch plus this task's
// own entry, whose payload is the report path.
func (generateReport) Execute(ctx context.Context, env Env) (any, error) {
	log := env.logger()
	b := report.NewBuilder(log, report.WithClock(func() time.Time { return env.Now }))
	w := report.NewWriter(env.Params.ReportsDir, env.Params.ReportFormat)

	rep := b.Build(ctx, env.Handle, env.Prior)
	rep.RunID = env.Params.RunID
	path := w.PathFor(rep.Timestamp)
	rep.TaskResults = append(rep.TaskResults, model.Succeeded(consts.TASK_GENERATE_REPORT, path))

	if err := w.WriteTo(path, rep); err != nil {
		return nil, err
	}
	log.Info(ctx, "data report written",
		zap.String("path", path),
		zap.Int("tables", len(rep.Tables)),
		zap.Bool("cache_info", rep.CacheInfo != nil),
	)
	return path, nil
}
