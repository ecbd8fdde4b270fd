package task

import (
	"fmt"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
)

// DefaultParams mirrors the retention windows the maintenance scripts
// have always used.
func DefaultParams() Params {
	return Params{
		AuditRetentionDays:     Days(consts.DEFAULT_AUDIT_RETENTION_DAYS),
		WorkspaceRetentionDays: Days(consts.DEFAULT_WORKSPACE_RETENTION_DAYS),
		RedisPattern:           consts.DEFAULT_REDIS_PATTERN,
		RedisScanCount:         consts.DEFAULT_REDIS_SCAN_COUNT,
		ReportsDir:             consts.DEFAULT_REPORTS_DIR,
		ReportFormat:           consts.DEFAULT_REPORT_FORMAT,
		BackupDir:              consts.DEFAULT_BACKUP_DIR,
	}
}

// WithDefaults fills unset values from DefaultParams. A retention window
// explicitly set to 0 stays 0.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.AuditRetentionDays == nil {
		p.AuditRetentionDays = d.AuditRetentionDays
	}
	if p.WorkspaceRetentionDays == nil {
		p.WorkspaceRetentionDays = d.WorkspaceRetentionDays
	}
	if p.RedisPattern == "" {
		p.RedisPattern = d.RedisPattern
	}
	if p.RedisScanCount <= 0 {
		p.RedisScanCount = d.RedisScanCount
	}
	if p.ReportsDir == "" {
		p.ReportsDir = d.ReportsDir
	}
	if p.ReportFormat == "" {
		p.ReportFormat = d.ReportFormat
	}
	if p.BackupDir == "" {
		p.BackupDir = d.BackupDir
	}
	return p
}

// Validate checks the parameters independently of any connection.
func (p Params) Validate() error {
	if n := p.AuditDays(); n < 0 {
		return errs.New(errs.KindValidation, fmt.Sprintf("audit_retention_days must be >= 0, got %d", n))
	}
	if n := p.WorkspaceDays(); n < 0 {
		return errs.New(errs.KindValidation, fmt.Sprintf("workspace_retention_days must be >= 0, got %d", n))
	}
	switch p.ReportFormat {
	case "", "json", "yaml":
	default:
		return errs.New(errs.KindValidation, fmt.Sprintf("report_format must be json or yaml, got %q", p.ReportFormat))
	}
	return nil
}
