package task

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/cache"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store/storetest"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

var schema = []string{
	`CREATE TABLE audit_logs (id INTEGER PRIMARY KEY, created_at TIMESTAMP NOT NULL)`,
	`CREATE TABLE sessions (id INTEGER PRIMARY KEY, expires_at TIMESTAMP NOT NULL)`,
	`CREATE TABLE workspaces (id INTEGER PRIMARY KEY, state TEXT NOT NULL, updated_at TIMESTAMP NOT NULL)`,
}

func envFor(s *store.Store, c conn.Cache, p Params) Env {
	if c == nil {
		c = conn.CacheAbsent{Reason: errors.New("not configured")}
	}
	return Env{Handle: conn.Handle{Store: s, Cache: c}, Params: p.WithDefaults(), Now: now}
}

func insert(t *testing.T, s *store.Store, q string, args ...any) {
	t.Helper()
	if _, err := s.DB().Exec(q, args...); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestCleanSessionsDeletesExpired(t *testing.T) {
	s := storetest.Open(t, schema...)
	for _, d := range []time.Duration{-time.Hour, -2 * time.Hour, -48 * time.Hour, time.Hour, 24 * time.Hour} {
		insert(t, s, `INSERT INTO sessions (expires_at) VALUES (?)`, now.Add(d))
	}

	got, err := cleanSessions.Execute(context.Background(), envFor(s, nil, Params{}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != int64(3) {
		t.Fatalf("deleted = %v, want 3", got)
	}
	n, _ := s.CountRows(context.Background(), "main", "sessions")
	if n != 2 {
		t.Fatalf("remaining = %d", n)
	}
}

func TestCleanAuditLogsIdempotent(t *testing.T) {
	s := storetest.Open(t, schema...)
	insert(t, s, `INSERT INTO audit_logs (created_at) VALUES (?), (?), (?)`,
		now.Add(-100*24*time.Hour), now.Add(-91*24*time.Hour), now.Add(-10*24*time.Hour))

	env := envFor(s, nil, Params{})
	first, err := cleanAuditLogs.Execute(context.Background(), env)
	if err != nil || first != int64(2) {
		t.Fatalf("first run = %v, %v", first, err)
	}
	second, err := cleanAuditLogs.Execute(context.Background(), env)
	if err != nil || second != int64(0) {
		t.Fatalf("second run = %v, %v", second, err)
	}
}

func TestCleanAuditLogsRetentionParam(t *testing.T) {
	s := storetest.Open(t, schema...)
	insert(t, s, `INSERT INTO audit_logs (created_at) VALUES (?), (?)`,
		now.Add(-10*24*time.Hour), now.Add(-3*24*time.Hour))

	got, err := cleanAuditLogs.Execute(context.Background(), envFor(s, nil, Params{AuditRetentionDays: Days(7)}))
	if err != nil || got != int64(1) {
		t.Fatalf("deleted = %v, %v", got, err)
	}
}

func TestCleanAuditLogsZeroRetention(t *testing.T) {
	s := storetest.Open(t, schema...)
	insert(t, s, `INSERT INTO audit_logs (created_at) VALUES (?), (?), (?)`,
		now.Add(-24*time.Hour), now.Add(-10*24*time.Hour), now.Add(time.Hour))

	got, err := cleanAuditLogs.Execute(context.Background(), envFor(s, nil, Params{AuditRetentionDays: Days(0)}))
	if err != nil || got != int64(2) {
		t.Fatalf("deleted = %v, %v; want every row older than now", got, err)
	}
}

func TestCleanWorkspacesZeroRetention(t *testing.T) {
	s := storetest.Open(t, schema...)
	insert(t, s, `INSERT INTO workspaces (state, updated_at) VALUES (?, ?), (?, ?)`,
		"deleted", now.Add(-time.Hour),
		"active", now.Add(-time.Hour))

	got, err := cleanWorkspaces.Execute(context.Background(), envFor(s, nil, Params{WorkspaceRetentionDays: Days(0)}))
	if err != nil || got != int64(1) {
		t.Fatalf("deleted = %v, %v", got, err)
	}
}

func TestCleanWorkspaces(t *testing.T) {
	s := storetest.Open(t, schema...)
	insert(t, s, `INSERT INTO workspaces (state, updated_at) VALUES (?, ?), (?, ?), (?, ?)`,
		"deleted", now.Add(-31*24*time.Hour),
		"deleted", now.Add(-29*24*time.Hour),
		"active", now.Add(-90*24*time.Hour))

	got, err := cleanWorkspaces.Execute(context.Background(), envFor(s, nil, Params{}))
	if err != nil || got != int64(1) {
		t.Fatalf("deleted = %v, %v", got, err)
	}
}

func TestCleanupMissingTable(t *testing.T) {
	s := storetest.Open(t)
	for _, h := range []cleanup{cleanAuditLogs, cleanSessions, cleanWorkspaces} {
		got, err := h.Execute(context.Background(), envFor(s, nil, Params{}))
		if err != nil || got != int64(0) {
			t.Fatalf("%s on missing table = %v, %v", h.desc.ID, got, err)
		}
	}
}

func TestCleanRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	for _, k := range []string{"temp:1", "temp:2", "perm:1"} {
		_ = mr.Set(k, "x")
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	env := envFor(nil, conn.CachePresent{Client: cache.NewClient(rdb)}, Params{RedisPattern: "temp:*"})
	got, err := cleanRedis{}.Execute(context.Background(), env)
	if err != nil || got != int64(2) {
		t.Fatalf("deleted = %v, %v", got, err)
	}
	if !mr.Exists("perm:1") {
		t.Fatalf("perm:1 removed")
	}
}

func TestCleanRedisDefaultPattern(t *testing.T) {
	mr := miniredis.RunT(t)
	for _, k := range []string{"temp:1", "temp:2", "perm:1"} {
		_ = mr.Set(k, "x")
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	env := envFor(nil, conn.CachePresent{Client: cache.NewClient(rdb)}, Params{})
	if env.Params.RedisPattern != "*temp*" {
		t.Fatalf("pattern = %q", env.Params.RedisPattern)
	}
	got, err := cleanRedis{}.Execute(context.Background(), env)
	if err != nil || got != int64(2) {
		t.Fatalf("deleted = %v, %v", got, err)
	}
	if !mr.Exists("perm:1") || mr.Exists("temp:1") || mr.Exists("temp:2") {
		t.Fatalf("remaining keys = %v", mr.Keys())
	}
}

func TestCleanRedisAbsent(t *testing.T) {
	got, err := cleanRedis{}.Execute(context.Background(), envFor(nil, nil, Params{}))
	if err != nil || got != int64(0) {
		t.Fatalf("absent cache = %v, %v", got, err)
	}
}

func TestVacuumAllAndSubset(t *testing.T) {
	s := storetest.Open(t, schema...)
	got, err := vacuumTables{}.Execute(context.Background(), envFor(s, nil, Params{}))
	if err != nil {
		t.Fatalf("vacuum: %v", err)
	}
	out := got.(model.VacuumOutcome)
	if len(out.Processed) != 3 || len(out.Failed) != 0 {
		t.Fatalf("outcome = %+v", out)
	}

	got, err = vacuumTables{}.Execute(context.Background(), envFor(s, nil, Params{VacuumTables: []string{"sessions", "nope"}}))
	if err != nil {
		t.Fatalf("partial failure should not fail the task: %v", err)
	}
	out = got.(model.VacuumOutcome)
	if len(out.Processed) != 1 || len(out.Failed) != 1 {
		t.Fatalf("outcome = %+v", out)
	}

	if _, err := (vacuumTables{}).Execute(context.Background(), envFor(s, nil, Params{VacuumTables: []string{"nope"}})); err == nil {
		t.Fatalf("expected failure when every table fails")
	}
}

func TestGenerateReportIncludesPriorAndSelf(t *testing.T) {
	s := storetest.Open(t, schema...)
	dir := t.TempDir()
	env := envFor(s, nil, Params{ReportsDir: dir, RunID: "run-1"})
	env.Prior = []model.TaskResult{model.Succeeded("vacuum_tables", model.VacuumOutcome{Processed: []string{"main.sessions"}})}

	got, err := generateReport{}.Execute(context.Background(), env)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	path := got.(string)
	if filepath.Base(path) != "data_report_20260601_120000.json" {
		t.Fatalf("path = %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rep struct {
		RunID       string `json:"run_id"`
		Tables      []model.TableStat
		TaskResults []struct {
			TaskID string `json:"task_id"`
			Status string `json:"status"`
		} `json:"task_results"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.RunID != "run-1" || len(rep.Tables) != 3 {
		t.Fatalf("report = %+v", rep)
	}
	if len(rep.TaskResults) != 2 || rep.TaskResults[0].TaskID != "vacuum_tables" || rep.TaskResults[1].TaskID != "generate_report" {
		t.Fatalf("task results = %+v", rep.TaskResults)
	}
	if len(env.Prior) != 1 {
		t.Fatalf("prior results mutated")
	}
}

func TestBackupTable(t *testing.T) {
	s := storetest.Open(t, schema...)
	insert(t, s, `INSERT INTO workspaces (state, updated_at) VALUES ('active', ?)`, now)
	dir := filepath.Join(t.TempDir(), "backups")

	got, err := backupTable{}.Execute(context.Background(), envFor(s, nil, Params{BackupDir: dir, BackupTables: []string{"workspaces"}}))
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	files := got.([]model.BackupFile)
	if len(files) != 1 || files[0].Rows != 1 || filepath.Base(files[0].Path) != "workspaces_20260601_120000.csv" {
		t.Fatalf("files = %+v", files)
	}
	b, _ := os.ReadFile(files[0].Path)
	if !strings.HasPrefix(string(b), "id,state,updated_at\n") {
		t.Fatalf("csv = %q", b)
	}

	_, err = backupTable{}.Execute(context.Background(), envFor(s, nil, Params{BackupDir: dir, BackupTables: []string{"ghost"}}))
	if err == nil {
		t.Fatalf("expected failure for missing table")
	}
	if _, err := (backupTable{}).Execute(context.Background(), envFor(s, nil, Params{BackupDir: dir})); err == nil {
		t.Fatalf("expected failure without tables")
	}
}
