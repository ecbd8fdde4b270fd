// Package task defines the maintenance task registry and its handlers.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

// Descriptor is the static description of a registered task.
type Descriptor struct {
	ID            string `json:"id" yaml:"id"`
	RequiresCache bool   `json:"requires_cache" yaml:"requires_cache"`
	Description   string `json:"description" yaml:"description"`
}

// Env is everything a handler may touch during one invocation.
type Env struct {
	Handle conn.Handle
	Params Params
	// Prior holds the results of the tasks already run in this batch.
	Prior []model.TaskResult
	// Now is read once per invocation and is the only time source a
	// handler uses for cutoffs.
	Now time.Time
	Log logging.Logger
}

// Handler executes one task. The returned value becomes the success
// payload; a returned error becomes the failure message.
type Handler interface {
	Descriptor() Descriptor
	Execute(ctx context.Context, env Env) (any, error)
}

// Params are the per-run tunables shared by all handlers.
type Params struct {
	// Retention windows are pointers so that an explicit 0 ("everything
	// older than now") is kept apart from "not set".
	AuditRetentionDays     *int     `yaml:"audit_retention_days" json:"audit_retention_days"`
	WorkspaceRetentionDays *int     `yaml:"workspace_retention_days" json:"workspace_retention_days"`
	RedisPattern           string   `yaml:"redis_pattern" json:"redis_pattern"`
	RedisScanCount         int64    `yaml:"redis_scan_count" json:"redis_scan_count"`
	VacuumTables           []string `yaml:"vacuum_tables" json:"vacuum_tables"`
	BackupTables           []string `yaml:"backup_tables" json:"backup_tables"`
	ReportsDir             string   `yaml:"reports_dir" json:"reports_dir"`
	ReportFormat           string   `yaml:"report_format" json:"report_format"`
	BackupDir              string   `yaml:"backup_dir" json:"backup_dir"`
	RunID                  string   `yaml:"-" json:"-"`
}

// Days returns a retention window for Params.
func Days(n int) *int { return &n }

// AuditDays is the audit retention window, the default when unset.
func (p Params) AuditDays() int { return daysOr(p.AuditRetentionDays, consts.DEFAULT_AUDIT_RETENTION_DAYS) }

// WorkspaceDays is the deleted-workspace retention window, the default when unset.
func (p Params) WorkspaceDays() int {
	return daysOr(p.WorkspaceRetentionDays, consts.DEFAULT_WORKSPACE_RETENTION_DAYS)
}

func daysOr(n *int, def int) int {
	if n == nil {
		return def
	}
	return *n
}

// days converts a retention window into a duration.
func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func (e Env) logger() logging.Logger { return logging.OrNop(e.Log) }

var errNoStore = errors.New("primary store not connected")
