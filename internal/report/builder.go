// Package report assembles and persists the data report.
package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

// Builder gathers a point-in-time snapshot of the store and cache. Each
// section degrades on its own: a failing section is logged and left empty
// while the rest of the report is still produced.
type Builder struct {
	log logging.Logger
	now func() time.Time
}

type Option func(*Builder)

// WithClock fixes the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(log logging.Logger, opts ...Option) *Builder {
	b := &Builder{log: logging.OrNop(log), now: time.Now}
	for _, o := range opts {
		o(b)
	}
	return b
}

// source is the part of *store.Store the report reads.
type source interface {
	Config() store.Config
	DriverName() string
	ServerVersion(ctx context.Context) (string, error)
	ListTables(ctx context.Context) ([]model.TableStat, error)
	CountRows(ctx context.Context, schema, table string) (int64, error)
	ConnectionCounts(ctx context.Context) (model.ConnectionCounts, error)
}

type cacheStats interface {
	Stats(ctx context.Context) (model.CacheInfo, error)
}

// Build snapshots the live system and attaches results.
func (b *Builder) Build(ctx context.Context, h conn.Handle, results []model.TaskResult) model.Report {
	var (
		src source
		cs  cacheStats
	)
	if h.Store != nil {
		src = h.Store
	}
	if client, ok := h.CacheClient(); ok {
		cs = client
	}
	return b.build(ctx, src, cs, results)
}

func (b *Builder) build(ctx context.Context, s source, cs cacheStats, results []model.TaskResult) model.Report {
	rep := model.Report{
		Timestamp:   b.now().UTC(),
		Tables:      []model.TableStat{},
		TaskResults: append(make([]model.TaskResult, 0, len(results)+1), results...),
	}

	if s == nil {
		b.log.Error(ctx, "report built without a primary store", zap.Error(errs.New(errs.KindReport, "no store")))
		return rep
	}

	cfg := s.Config()
	rep.Database = model.DatabaseInfo{
		Driver:   s.DriverName(),
		Address:  cfg.Address(),
		Database: cfg.Database,
	}
	if v, err := s.ServerVersion(ctx); err != nil {
		b.log.Warn(ctx, "server version unavailable", zap.Error(err))
	} else {
		rep.Database.Version = v
	}

	if tables, err := s.ListTables(ctx); err != nil {
		b.log.Error(ctx, "table list unavailable", zap.Error(errs.Wrap(errs.KindReport, "list tables", err)))
	} else {
		for i := range tables {
			n, err := s.CountRows(ctx, tables[i].Schema, tables[i].Name)
			if err != nil {
				b.log.Error(ctx, "row count failed, recording 0",
					zap.String("table", tables[i].Schema+"."+tables[i].Name),
					zap.Error(errs.Wrap(errs.KindReport, "count rows", err)),
				)
				n = 0
			}
			tables[i].RowCount = n
		}
		rep.Tables = tables
	}

	if cc, err := s.ConnectionCounts(ctx); err != nil {
		b.log.Error(ctx, "connection counts unavailable", zap.Error(errs.Wrap(errs.KindReport, "connection counts", err)))
	} else {
		rep.ConnectionCounts = &cc
	}

	if cs != nil {
		if info, err := cs.Stats(ctx); err != nil {
			b.log.Warn(ctx, "cache stats unavailable, omitting cache_info", zap.Error(err))
		} else {
			rep.CacheInfo = &info
		}
	}
	return rep
}
