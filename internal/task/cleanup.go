package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
)

// cleanup deletes the rows of one table matching a cutoff computed from
// Env.Now. A missing table is not an error: the run reports zero rows.
type cleanup struct {
	desc  Descriptor
	table string
	where func(env Env) []store.Cond
}

var cleanAuditLogs = cleanup{
	desc: Descriptor{
		ID:          consts.TASK_CLEAN_AUDIT_LOGS,
		Description: "delete audit_logs rows older than the audit retention window",
	},
	table: "audit_logs",
	where: func(env Env) []store.Cond {
		return []store.Cond{
			{Column: "created_at", Op: "<", Value: env.Now.Add(-days(env.Params.AuditDays()))},
		}
	},
}

var cleanSessions = cleanup{
	desc: Descriptor{
		ID:          consts.TASK_CLEAN_SESSIONS,
		Description: "delete sessions whose expires_at is in the past",
	},
	table: "sessions",
	where: func(env Env) []store.Cond {
		return []store.Cond{{Column: "expires_at", Op: "<", Value: env.Now}}
	},
}

var cleanWorkspaces = cleanup{
	desc: Descriptor{
		ID:          consts.TASK_CLEAN_WORKSPACES,
		Description: "delete workspaces in state 'deleted' not updated within the workspace retention window",
	},
	table: "workspaces",
	where: func(env Env) []store.Cond {
		return []store.Cond{
			{Column: "state", Op: "=", Value: "deleted"},
			{Column: "updated_at", Op: "<", Value: env.Now.Add(-days(env.Params.WorkspaceDays()))},
		}
	},
}

func (c cleanup) Descriptor() Descriptor { return c.desc }

func (c cleanup) Execute(ctx context.Context, env Env) (any, error) {
	s := env.Handle.Store
	if s == nil {
		return nil, errNoStore
	}
	log := env.logger().With(zap.String("table", c.table))

	exists, err := s.TableExists(ctx, c.table)
	if err != nil {
		return nil, err
	}
	if !exists {
		log.Info(ctx, "table does not exist, skipping cleanup")
		return int64(0), nil
	}

	conds := c.where(env)
	n, err := s.Delete(ctx, c.table, conds...)
	if err != nil {
		return nil, err
	}
	fields := []zap.Field{zap.Int64("rows", n)}
	for _, cond := range conds {
		fields = append(fields, zap.Any(cond.Column, cond.Value))
	}
	log.Info(ctx, "cleanup deleted rows", fields...)
	return n, nil
}
