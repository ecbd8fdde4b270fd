package consts

const (
	APP_NAME = "dbkeeper"

	DEFAULT_CONFIG_PATH = "config.yaml"

	KEY_TraceID = "trace_id"
	KEY_SpanID  = "span_id"
	KEY_RunID   = "run_id"
	KEY_TaskID  = "task_id"
)

// Environment overrides, named after the variables operators already export for the api service.
const (
	ENV_DB_DRIVER      = "DB_DRIVER"
	ENV_DB_HOST        = "DB_HOST"
	ENV_DB_PORT        = "DB_PORT"
	ENV_DB_DATABASE    = "DB_DATABASE"
	ENV_DB_USERNAME    = "DB_USERNAME"
	ENV_DB_PASSWORD    = "DB_PASSWORD"
	ENV_REDIS_HOST     = "REDIS_HOST"
	ENV_REDIS_PORT     = "REDIS_PORT"
	ENV_REDIS_DB       = "REDIS_DB"
	ENV_REDIS_PASSWORD = "REDIS_PASSWORD"
	ENV_REPORTS_DIR    = "DBKEEPER_REPORTS_DIR"
)
