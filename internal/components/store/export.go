// components/store/export.go
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
)

// ExportCSV writes the whole table as CSV with a header row and returns the
// number of data rows written. Postgres streams through COPY; the other
// engines page through a plain SELECT.
func (s *Store) ExportCSV(ctx context.Context, table string, w io.Writer) (int64, error) {
	if s.dialect.Name() == DriverPostgres {
		n, err := s.copyOut(ctx, table, w)
		if !errors.Is(err, errNotPgx) {
			return n, err
		}
	}
	return s.selectOut(ctx, table, w)
}

var errNotPgx = errors.New("connection is not a pgx connection")

func (s *Store) copyOut(ctx context.Context, table string, w io.Writer) (int64, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var rows int64
	err = conn.Raw(func(driverConn any) error {
		pc, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return errNotPgx
		}
		sql := "COPY " + s.Qualified(table) + " TO STDOUT WITH (FORMAT csv, HEADER true)"
		tag, err := pc.Conn().PgConn().CopyTo(ctx, w, sql)
		if err != nil {
			return fmt.Errorf("copy %s: %w", table, err)
		}
		rows = tag.RowsAffected()
		return nil
	})
	return rows, err
}

func (s *Store) selectOut(ctx context.Context, table string, w io.Writer) (int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.Qualified(table))
	if err != nil {
		return 0, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return 0, err
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	record := make([]string, len(cols))

	var n int64
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return n, fmt.Errorf("scan %s: %w", table, err)
		}
		for i, v := range values {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, err
	}
	cw.Flush()
	return n, cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
