package task

import (
	"reflect"
	"testing"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
)

func TestDefaultRegistryDescriptors(t *testing.T) {
	r := DefaultRegistry()
	ds := r.Descriptors()
	if len(ds) != 7 {
		t.Fatalf("descriptors = %d", len(ds))
	}
	for _, d := range ds {
		if d.RequiresCache != (d.ID == "clean_redis") {
			t.Fatalf("%s requires_cache = %v", d.ID, d.RequiresCache)
		}
	}
}

func TestExpandAll(t *testing.T) {
	r := DefaultRegistry()
	got := r.Expand([]string{"clean_sessions", " all ", "", "clean_sessions"})
	want := []string{
		"clean_sessions",
		"clean_audit_logs", "clean_sessions", "clean_workspaces", "vacuum_tables", "clean_redis", "generate_report",
		"clean_sessions",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expand = %v", got)
	}
}

func TestValidateUnknown(t *testing.T) {
	r := DefaultRegistry()
	err := r.Validate([]string{"clean_sessions", "drop_everything"})
	if !errs.Is(err, errs.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := r.Validate(nil); !errs.Is(err, errs.KindValidation) {
		t.Fatalf("empty request should be invalid, got %v", err)
	}
	if err := r.Validate([]string{"backup_table", "clean_redis"}); err != nil {
		t.Fatalf("valid ids rejected: %v", err)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	if _, err := NewRegistry(cleanSessions, cleanSessions); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestParams(t *testing.T) {
	p := Params{}.WithDefaults()
	if p.AuditDays() != 90 || p.WorkspaceDays() != 30 || p.RedisPattern != "*temp*" {
		t.Fatalf("defaults = %+v", p)
	}
	zero := Params{AuditRetentionDays: Days(0), WorkspaceRetentionDays: Days(0)}.WithDefaults()
	if zero.AuditDays() != 0 || zero.WorkspaceDays() != 0 {
		t.Fatalf("explicit zero retention replaced: audit %d, workspaces %d", zero.AuditDays(), zero.WorkspaceDays())
	}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero retention rejected: %v", err)
	}
	if err := (Params{AuditRetentionDays: Days(-1)}).Validate(); !errs.Is(err, errs.KindValidation) {
		t.Fatalf("negative retention accepted: %v", err)
	}
	if err := (Params{ReportFormat: "csv"}).Validate(); err == nil {
		t.Fatalf("bad report format accepted")
	}
}
