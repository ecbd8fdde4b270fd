package consts

const (
	TASK_CLEAN_AUDIT_LOGS = "clean_audit_logs"
	TASK_CLEAN_SESSIONS   = "clean_sessions"
	TASK_CLEAN_WORKSPACES = "clean_workspaces"
	TASK_VACUUM_TABLES    = "vacuum_tables"
	TASK_CLEAN_REDIS      = "clean_redis"
	TASK_GENERATE_REPORT  = "generate_report"
	TASK_BACKUP_TABLE     = "backup_table"

	// TASK_ALL expands to every task that runs without extra arguments.
	TASK_ALL = "all"
)

const (
	DEFAULT_AUDIT_RETENTION_DAYS     = 90
	DEFAULT_WORKSPACE_RETENTION_DAYS = 30
	DEFAULT_REDIS_PATTERN            = "*temp*"
	DEFAULT_REDIS_SCAN_COUNT         = 500
	DEFAULT_REPORTS_DIR              = "reports"
	DEFAULT_BACKUP_DIR               = "reports/backups"
	DEFAULT_REPORT_FORMAT            = "json"
)
