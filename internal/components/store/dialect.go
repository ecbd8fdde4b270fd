// components/store/dialect.go
package store

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect isolates the SQL that differs between engines.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(cfg *Config) (string, error)
	Placeholder(n int) string
	Quote(ident string) string
	// TableExistsQuery returns a query yielding a single count.
	TableExistsQuery(schema, table string) (string, []any)
	// ListTablesQuery yields schema, name, owner, size_bytes ordered by size desc.
	ListTablesQuery(schema string) (string, []any)
	MaintainStatement(qualified string) string
	// MaintainReportsRows is true when the maintain statement reports
	// per-table failures as result rows instead of an error.
	MaintainReportsRows() bool
	// CompactStatement runs once after per-table maintenance; empty when none.
	CompactStatement() string
	// ConnectionCountsQuery yields total, active, idle; empty when the engine has no session view.
	ConnectionCountsQuery() string
	VersionQuery() string
}

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverPostgres:
		return postgresDialect{}, nil
	case DriverMySQL:
		return mysqlDialect{}, nil
	case DriverSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func quoteWith(ident, q string) string {
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// ---- postgres (pgx stdlib) ----

type postgresDialect struct{}

func (postgresDialect) Name() string       { return DriverPostgres }
func (postgresDialect) DriverName() string { return "pgx" }

func (postgresDialect) DSN(cfg *Config) (string, error) {
	if strings.TrimSpace(cfg.DSN) != "" {
		return cfg.DSN, nil
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   joinHostPort(cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}
	q := url.Values{}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	if q.Get("application_name") == "" {
		q.Set("application_name", "dbkeeper")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (postgresDialect) Placeholder(n int) string  { return fmt.Sprintf("$%d", n) }
func (postgresDialect) Quote(ident string) string { return quoteWith(ident, `"`) }

func (postgresDialect) TableExistsQuery(schema, table string) (string, []any) {
	return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2`,
		[]any{schema, table}
}

func (postgresDialect) ListTablesQuery(string) (string, []any) {
	return `SELECT schemaname, tablename, tableowner,
       pg_total_relation_size(quote_ident(schemaname) || '.' || quote_ident(tablename)) AS size_bytes
  FROM pg_tables
 WHERE schemaname NOT IN ('information_schema', 'pg_catalog')
   AND schemaname NOT LIKE 'pg_toast%'
 ORDER BY size_bytes DESC, tablename`, nil
}

func (postgresDialect) MaintainStatement(qualified string) string {
	return "VACUUM ANALYZE " + qualified
}

func (postgresDialect) MaintainReportsRows() bool { return false }

func (postgresDialect) CompactStatement() string { return "" }

func (postgresDialect) ConnectionCountsQuery() string {
	return `SELECT count(*),
       count(*) FILTER (WHERE state = 'active'),
       count(*) FILTER (WHERE state = 'idle')
  FROM pg_stat_activity
 WHERE datname = current_database()`
}

func (postgresDialect) VersionQuery() string { return "SHOW server_version" }

// ---- mysql (go-sql-driver) ----

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return DriverMySQL }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) DSN(cfg *Config) (string, error) {
	if strings.TrimSpace(cfg.DSN) != "" {
		return cfg.DSN, nil
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = joinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Loc = time.UTC

	mc.Params = map[string]string{"charset": "utf8mb4"}
	for k, v := range cfg.Params {
		switch strings.ToLower(k) {
		case "parsetime", "loc":
			// fixed above; times are handled in UTC
		default:
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN(), nil
}

func (mysqlDialect) Placeholder(int) string     { return "?" }
func (mysqlDialect) Quote(ident string) string { return quoteWith(ident, "`") }

func (mysqlDialect) TableExistsQuery(schema, table string) (string, []any) {
	return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?`,
		[]any{schema, table}
}

func (mysqlDialect) ListTablesQuery(schema string) (string, []any) {
	return "SELECT table_schema, table_name, '', COALESCE(data_length + index_length, 0) AS size_bytes" +
		" FROM information_schema.tables" +
		" WHERE table_schema = ? AND table_type = 'BASE TABLE'" +
		" ORDER BY size_bytes DESC, table_name", []any{schema}
}

func (mysqlDialect) MaintainStatement(qualified string) string {
	return "OPTIMIZE TABLE " + qualified
}

// OPTIMIZE TABLE answers with Table, Op, Msg_type, Msg_text rows; a
// missing table is an "error" row, not a statement error.
func (mysqlDialect) MaintainReportsRows() bool { return true }

func (mysqlDialect) CompactStatement() string { return "" }

func (mysqlDialect) ConnectionCountsQuery() string {
	return `SELECT COUNT(*),
       COALESCE(SUM(command <> 'Sleep'), 0),
       COALESCE(SUM(command = 'Sleep'), 0)
  FROM information_schema.processlist
 WHERE db = DATABASE()`
}

func (mysqlDialect) VersionQuery() string { return "SELECT VERSION()" }

// ---- sqlite (modernc, pure go) ----

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return DriverSQLite }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) DSN(cfg *Config) (string, error) {
	if strings.TrimSpace(cfg.DSN) != "" {
		return cfg.DSN, nil
	}
	q := url.Values{}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	// text timestamps must sort the same way they compare
	if q.Get("_time_format") == "" {
		q.Set("_time_format", "sqlite")
	}
	return cfg.Database + "?" + q.Encode(), nil
}

func (sqliteDialect) Placeholder(int) string     { return "?" }
func (sqliteDialect) Quote(ident string) string { return quoteWith(ident, `"`) }

func (sqliteDialect) TableExistsQuery(_, table string) (string, []any) {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, []any{table}
}

func (sqliteDialect) ListTablesQuery(string) (string, []any) {
	return `SELECT 'main', name, '', 0 AS size_bytes
  FROM sqlite_master
 WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
 ORDER BY name`, nil
}

func (sqliteDialect) MaintainStatement(qualified string) string {
	return "ANALYZE " + qualified
}

func (sqliteDialect) MaintainReportsRows() bool { return false }

func (sqliteDialect) CompactStatement() string { return "VACUUM" }

func (sqliteDialect) ConnectionCountsQuery() string { return "" }

func (sqliteDialect) VersionQuery() string { return "SELECT sqlite_version()" }
