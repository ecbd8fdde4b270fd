package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/cache"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store/storetest"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

var fixedNow = time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

func seededStore(t *testing.T) *store.Store {
	return storetest.Open(t,
		`CREATE TABLE sessions (id INTEGER PRIMARY KEY, expires_at TIMESTAMP)`,
		`CREATE TABLE audit_logs (id INTEGER PRIMARY KEY, created_at TIMESTAMP)`,
		`INSERT INTO sessions (id) VALUES (1), (2), (3)`,
	)
}

func TestBuildWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	_ = mr.Set("k", "v")
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	h := conn.Handle{Store: seededStore(t), Cache: conn.CachePresent{Client: cache.NewClient(rdb)}}
	results := []model.TaskResult{model.Succeeded("clean_sessions", int64(0))}

	rep := NewBuilder(nil, WithClock(func() time.Time { return fixedNow })).Build(context.Background(), h, results)

	if !rep.Timestamp.Equal(fixedNow) {
		t.Fatalf("timestamp = %v", rep.Timestamp)
	}
	if rep.Database.Driver != "sqlite" || rep.Database.Version == "" {
		t.Fatalf("database info = %+v", rep.Database)
	}
	if len(rep.Tables) != 2 {
		t.Fatalf("tables = %+v", rep.Tables)
	}
	for _, tb := range rep.Tables {
		if tb.Name == "sessions" && tb.RowCount != 3 {
			t.Fatalf("sessions row count = %d", tb.RowCount)
		}
	}
	if rep.ConnectionCounts == nil {
		t.Fatalf("connection counts missing")
	}
	if rep.CacheInfo == nil || rep.CacheInfo.KeyCount != 1 {
		t.Fatalf("cache info = %+v", rep.CacheInfo)
	}
	if len(rep.TaskResults) != 1 || rep.TaskResults[0].TaskID != "clean_sessions" {
		t.Fatalf("task results = %+v", rep.TaskResults)
	}
}

func TestBuildCacheAbsent(t *testing.T) {
	h := conn.Handle{Store: seededStore(t), Cache: conn.CacheAbsent{Reason: errors.New("refused")}}
	rep := NewBuilder(nil).Build(context.Background(), h, nil)
	if rep.CacheInfo != nil {
		t.Fatalf("cache info should be absent")
	}
	if len(rep.Tables) == 0 || rep.ConnectionCounts == nil {
		t.Fatalf("relational sections missing: %+v", rep)
	}
	if rep.TaskResults == nil {
		t.Fatalf("task results should be an empty list, not nil")
	}
}

func TestBuildCacheStatsFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	h := conn.Handle{Store: seededStore(t), Cache: conn.CachePresent{Client: cache.NewClient(rdb)}}
	rep := NewBuilder(logging.NewWithCore(core)).Build(context.Background(), h, nil)
	if rep.CacheInfo != nil {
		t.Fatalf("cache info should be absent after stats failure")
	}
	if logs.FilterMessage("cache stats unavailable, omitting cache_info").Len() != 1 {
		t.Fatalf("expected a warning, got %v", logs.All())
	}
}

type failingCount struct {
	*store.Store
	table string
}

func (f failingCount) CountRows(ctx context.Context, schema, table string) (int64, error) {
	if table == f.table {
		return 0, errors.New("permission denied")
	}
	return f.Store.CountRows(ctx, schema, table)
}

func TestRowCountFailureRecordsZero(t *testing.T) {
	s := seededStore(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	b := NewBuilder(logging.NewWithCore(core))

	rep := b.build(context.Background(), failingCount{Store: s, table: "sessions"}, nil, nil)
	if len(rep.Tables) != 2 {
		t.Fatalf("tables = %+v", rep.Tables)
	}
	for _, tb := range rep.Tables {
		if tb.Name == "sessions" && tb.RowCount != 0 {
			t.Fatalf("failed table row count = %d, want 0", tb.RowCount)
		}
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one error log, got %d", logs.Len())
	}
}

func TestBuildWithoutStore(t *testing.T) {
	rep := NewBuilder(nil).Build(context.Background(), conn.Handle{}, nil)
	if rep.Tables == nil || len(rep.Tables) != 0 {
		t.Fatalf("tables should be empty list: %+v", rep.Tables)
	}
}
