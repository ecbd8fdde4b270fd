package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRows struct {
	data [][4]any
	i    int
	err  error
}

func (f *fakeRows) Next() bool {
	if f.i >= len(f.data) {
		return false
	}
	f.i++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.data[f.i-1]
	for i, d := range dest {
		ns := d.(*sql.NullString)
		if row[i] == nil {
			*ns = sql.NullString{}
			continue
		}
		*ns = sql.NullString{String: row[i].(string), Valid: true}
	}
	return nil
}

func (f *fakeRows) Err() error { return f.err }

func TestCheckMaintainRows(t *testing.T) {
	ok := &fakeRows{data: [][4]any{
		{"app.sessions", "optimize", "note", "Table does not support optimize, doing recreate + analyze instead"},
		{"app.sessions", "optimize", "status", "OK"},
	}}
	if err := checkMaintainRows(ok); err != nil {
		t.Fatalf("notes should pass: %v", err)
	}

	missing := &fakeRows{data: [][4]any{
		{"app.nope", "optimize", "Error", "Table 'app.nope' doesn't exist"},
		{"app.nope", "optimize", "status", "Operation failed"},
	}}
	err := checkMaintainRows(missing)
	if err == nil || !strings.Contains(err.Error(), "doesn't exist") {
		t.Fatalf("error row not reported: %v", err)
	}

	nullText := &fakeRows{data: [][4]any{{"app.x", "optimize", "error", nil}}}
	if err := checkMaintainRows(nullText); err == nil {
		t.Fatalf("error row with NULL text passed")
	}

	broken := &fakeRows{err: errors.New("connection reset")}
	if err := checkMaintainRows(broken); err == nil {
		t.Fatalf("iteration error swallowed")
	}
}

func TestMaintainReportsRows(t *testing.T) {
	for _, c := range []struct {
		d    Dialect
		want bool
	}{
		{postgresDialect{}, false},
		{mysqlDialect{}, true},
		{sqliteDialect{}, false},
	} {
		if got := c.d.MaintainReportsRows(); got != c.want {
			t.Fatalf("%s: MaintainReportsRows = %v", c.d.Name(), got)
		}
	}
}

// statusDialect answers maintenance with a fixed OPTIMIZE-style result set.
type statusDialect struct {
	sqliteDialect
	msgType string
}

func (statusDialect) MaintainReportsRows() bool { return true }

func (d statusDialect) MaintainStatement(string) string {
	return "SELECT 'main.t', 'optimize', '" + d.msgType + "', 'from server'"
}

func TestMaintainReadsStatusRows(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := New(db, statusDialect{msgType: "status"}, nil).Maintain(ctx, "main", "t"); err != nil {
		t.Fatalf("status row failed maintenance: %v", err)
	}
	err = New(db, statusDialect{msgType: "error"}, nil).Maintain(ctx, "main", "t")
	if err == nil || !strings.Contains(err.Error(), "from server") {
		t.Fatalf("error row not surfaced: %v", err)
	}
}
