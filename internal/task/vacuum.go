package task

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

type vacuumTables struct{}

func (vacuumTables) Descriptor() Descriptor {
	return Descriptor{
		ID:          consts.TASK_VACUUM_TABLES,
		Description: "reclaim storage and refresh planner statistics on user tables",
	}
}

// Execute maintains every user table, or only Params.VacuumTables when set.
// One table failing is logged and recorded; the task fails only when no
// table could be processed.
func (vacuumTables) Execute(ctx context.Context, env Env) (any, error) {
	s := env.Handle.Store
	if s == nil {
		return nil, errNoStore
	}
	log := env.logger()

	type target struct{ schema, name string }
	var targets []target
	if len(env.Params.VacuumTables) > 0 {
		for _, name := range env.Params.VacuumTables {
			schema, table := s.Ref(name)
			targets = append(targets, target{schema, table})
		}
	} else {
		tables, err := s.ListTables(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range tables {
			targets = append(targets, target{t.Schema, t.Name})
		}
	}

	out := model.VacuumOutcome{Processed: []string{}}
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label := t.name
		if t.schema != "" {
			label = t.schema + "." + t.name
		}
		if err := s.Maintain(ctx, t.schema, t.name); err != nil {
			log.Error(ctx, "table maintenance failed", zap.String("table", label), zap.Error(err))
			if out.Failed == nil {
				out.Failed = make(map[string]string)
			}
			out.Failed[label] = err.Error()
			continue
		}
		log.Debug(ctx, "table maintained", zap.String("table", label))
		out.Processed = append(out.Processed, label)
	}

	if len(out.Processed) == 0 && len(out.Failed) > 0 {
		return nil, fmt.Errorf("maintenance failed on all %d tables", len(out.Failed))
	}
	if err := s.Compact(ctx); err != nil {
		log.Warn(ctx, "database compaction failed", zap.Error(err))
	}
	log.Info(ctx, "tables maintained", zap.Int("processed", len(out.Processed)), zap.Int("failed", len(out.Failed)))
	return out, nil
}
