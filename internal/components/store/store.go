// components/store/store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

// Store runs the maintenance statements against one *sql.DB. Every
// statement executes in autocommit mode and result sets are fully drained
// before the next statement is issued.
type Store struct {
	db      *sql.DB
	dialect Dialect
	cfg     *Config
}

// New wraps an open database. cfg may be nil for ad-hoc use in tests.
func New(db *sql.DB, dialect Dialect, cfg *Config) *Store {
	if cfg == nil {
		cfg = &Config{Driver: dialect.Name()}
		SetDefaults(cfg)
	}
	return &Store{db: db, dialect: dialect, cfg: cfg}
}

func (s *Store) DB() *sql.DB        { return s.db }
func (s *Store) Config() Config     { return *s.cfg }
func (s *Store) Close() error       { return s.db.Close() }
func (s *Store) DriverName() string { return s.dialect.Name() }

// Cond is one `column op value` term of a WHERE clause.
type Cond struct {
	Column string
	Op     string
	Value  any
}

var allowedOps = map[string]bool{"=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true}

// Ref splits "schema.table" into its parts, defaulting the schema.
func (s *Store) Ref(name string) (schema, table string) {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i], name[i+1:]
	}
	return s.cfg.Schema, name
}

// Qualified returns the quoted schema.table form of name.
func (s *Store) Qualified(name string) string {
	return s.quoteRef(s.Ref(name))
}

func (s *Store) quoteRef(schema, table string) string {
	if schema == "" {
		return s.dialect.Quote(table)
	}
	return s.dialect.Quote(schema) + "." + s.dialect.Quote(table)
}

func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	schema, table := s.Ref(name)
	q, args := s.dialect.TableExistsQuery(schema, table)
	var n int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

// Delete removes the rows of table matching every cond and returns the
// number of rows affected.
func (s *Store) Delete(ctx context.Context, table string, conds ...Cond) (int64, error) {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(s.Qualified(table))
	args := make([]any, 0, len(conds))
	for i, c := range conds {
		if !allowedOps[c.Op] {
			return 0, fmt.Errorf("unsupported operator %q", c.Op)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, c.Value)
		fmt.Fprintf(&b, "%s %s %s", s.dialect.Quote(c.Column), c.Op, s.dialect.Placeholder(len(args)))
	}

	res, err := s.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for %s: %w", table, err)
	}
	return n, nil
}

// ListTables returns every user table ordered by size desc then name.
// RowCount is left zero; see CountRows.
func (s *Store) ListTables(ctx context.Context) ([]model.TableStat, error) {
	q, args := s.dialect.ListTablesQuery(s.cfg.Schema)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := make([]model.TableStat, 0)
	for rows.Next() {
		var (
			t     model.TableStat
			owner sql.NullString
			size  sql.NullInt64
		)
		if err := rows.Scan(&t.Schema, &t.Name, &owner, &size); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		t.Owner = owner.String
		t.SizeBytes = size.Int64
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (s *Store) CountRows(ctx context.Context, schema, table string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.quoteRef(schema, table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return n, nil
}

// Maintain runs the dialect's vacuum/analyze statement for one table.
func (s *Store) Maintain(ctx context.Context, schema, table string) error {
	stmt := s.dialect.MaintainStatement(s.quoteRef(schema, table))
	if !s.dialect.MaintainReportsRows() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("maintain %s: %w", table, err)
		}
		return nil
	}
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("maintain %s: %w", table, err)
	}
	defer rows.Close()
	if err := checkMaintainRows(rows); err != nil {
		return fmt.Errorf("maintain %s: %w", table, err)
	}
	return nil
}

// maintainRows is the part of *sql.Rows checkMaintainRows reads.
type maintainRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// checkMaintainRows drains Table, Op, Msg_type, Msg_text rows and fails on
// the first one whose Msg_type is "error". Notes and warnings pass.
func checkMaintainRows(rows maintainRows) error {
	var failed []string
	for rows.Next() {
		var tbl, op, msgType, msgText sql.NullString
		if err := rows.Scan(&tbl, &op, &msgType, &msgText); err != nil {
			return err
		}
		if strings.EqualFold(msgType.String, "error") {
			failed = append(failed, msgText.String)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(failed) > 0 {
		return errors.New(strings.Join(failed, "; "))
	}
	return nil
}

// Compact runs the database-wide statement that follows per-table
// maintenance, if the engine has one.
func (s *Store) Compact(ctx context.Context) error {
	stmt := s.dialect.CompactStatement()
	if stmt == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("compact: %w", err)
	}
	return nil
}

// ConnectionCounts reports server sessions, or the local pool when the
// engine exposes no session view.
func (s *Store) ConnectionCounts(ctx context.Context) (model.ConnectionCounts, error) {
	q := s.dialect.ConnectionCountsQuery()
	if q == "" {
		st := s.db.Stats()
		return model.ConnectionCounts{
			Total:  int64(st.OpenConnections),
			Active: int64(st.InUse),
			Idle:   int64(st.Idle),
		}, nil
	}
	var cc model.ConnectionCounts
	if err := s.db.QueryRowContext(ctx, q).Scan(&cc.Total, &cc.Active, &cc.Idle); err != nil {
		return model.ConnectionCounts{}, fmt.Errorf("connection counts: %w", err)
	}
	return cc, nil
}

func (s *Store) ServerVersion(ctx context.Context) (string, error) {
	var v string
	if err := s.db.QueryRowContext(ctx, s.dialect.VersionQuery()).Scan(&v); err != nil {
		return "", fmt.Errorf("server version: %w", err)
	}
	return v, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
