// Package preflight checks that a maintenance run could start: settings
// complete, output directories writable, store reachable, cache reachable
// (optional).
package preflight

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/task"
)

type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

type Result struct {
	Checks []Check `json:"checks"`
}

// OK is false when any check failed; warnings do not count.
func (r Result) OK() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

func (r *Result) add(name string, st Status, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Status: st, Detail: fmt.Sprintf(format, args...)})
}

// Run performs every check in order. Connection checks are skipped when
// the database settings are incomplete.
func Run(ctx context.Context, cfg conn.Config, params task.Params, log logging.Logger) Result {
	log = logging.OrNop(log)
	params = params.WithDefaults()
	var res Result

	m, err := conn.NewManager(cfg, log)
	if err != nil {
		res.add("database config", StatusFail, "%v", err)
		return res
	}
	defer m.Release(context.WithoutCancel(ctx))

	if err := params.Validate(); err != nil {
		res.add("maintenance config", StatusFail, "%v", err)
	} else {
		res.add("maintenance config", StatusOK, "audit %dd, workspaces %dd, redis pattern %q",
			params.AuditDays(), params.WorkspaceDays(), params.RedisPattern)
	}

	for _, d := range []struct{ name, dir string }{
		{"reports dir", params.ReportsDir},
		{"backup dir", params.BackupDir},
	} {
		if err := writable(d.dir); err != nil {
			res.add(d.name, StatusFail, "%s: %v", d.dir, err)
		} else {
			res.add(d.name, StatusOK, "%s", d.dir)
		}
	}

	s, err := m.ConnectPrimary(ctx)
	if err != nil {
		res.add("database", StatusFail, "%v", err)
	} else if v, err := s.ServerVersion(ctx); err != nil {
		res.add("database", StatusWarn, "connected, version unavailable: %v", err)
	} else {
		res.add("database", StatusOK, "%s %s", s.DriverName(), v)
	}

	switch c := m.ConnectCache(ctx).(type) {
	case conn.CachePresent:
		info, err := c.Client.Stats(ctx)
		if err != nil {
			res.add("cache", StatusWarn, "connected, stats unavailable: %v", err)
			break
		}
		res.add("cache", StatusOK, "redis %s, memory %s, %d keys", info.Version, info.MemoryUsedHuman, info.KeyCount)
	case conn.CacheAbsent:
		res.add("cache", StatusWarn, "unavailable (cache tasks will no-op): %v", c.Reason)
	}

	for _, c := range res.Checks {
		log.Debug(ctx, "preflight check", zap.String("check", c.Name), zap.String("status", string(c.Status)), zap.String("detail", c.Detail))
	}
	return res
}

// writable creates dir if needed and proves a file can be written there.
func writable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".dbkeeper-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
