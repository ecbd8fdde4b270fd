package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleYAML = `
database:
  driver: postgres
  host: db.internal
  port: 5433
  database: app
  user: maint
  password: secret
redis:
  enabled: true
  addresses: ["cache.internal:6380"]
maintenance:
  audit_retention_days: 30
  vacuum_tables: [sessions]
`

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", sampleYAML)
	cm := NewConfigManager(path)
	cm.Loader().WithEnv(envMap(map[string]string{
		"DB_HOST":              "override.internal",
		"REDIS_HOST":           "redis.internal",
		"DBKEEPER_REPORTS_DIR": "/var/reports",
	}))
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}

	c := cm.Connection()
	if c.Primary.Host != "override.internal" || c.Primary.Port != 5433 || c.Primary.Password != "secret" {
		t.Fatalf("primary = %+v", c.Primary)
	}
	if len(c.Cache.Addresses) != 1 || c.Cache.Addresses[0] != "redis.internal:6379" {
		t.Fatalf("cache addresses = %v", c.Cache.Addresses)
	}
	p := cm.TaskParams()
	if p.AuditDays() != 30 || p.WorkspaceDays() != 30 || p.ReportsDir != "/var/reports" {
		t.Fatalf("params = %+v", p)
	}
	if len(p.VacuumTables) != 1 || p.VacuumTables[0] != "sessions" {
		t.Fatalf("vacuum tables = %v", p.VacuumTables)
	}
}

func TestZeroRetentionFromFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
database:
  driver: sqlite
  database: /tmp/app.db
maintenance:
  audit_retention_days: 0
`)
	cm := NewConfigManager(path)
	cm.Loader().WithEnv(envMap(nil))
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}
	p := cm.TaskParams()
	if p.AuditDays() != 0 || p.WorkspaceDays() != 30 {
		t.Fatalf("audit %d, workspaces %d", p.AuditDays(), p.WorkspaceDays())
	}
}

func TestFileAddressesKeptWithoutEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", sampleYAML)
	cm := NewConfigManager(path)
	cm.Loader().WithEnv(envMap(nil))
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cm.Connection().Cache.Addresses; len(got) != 1 || got[0] != "cache.internal:6380" {
		t.Fatalf("addresses = %v", got)
	}
}

func TestJSONConfig(t *testing.T) {
	path := writeFile(t, "config.json", `{"database": {"driver": "sqlite", "database": "/tmp/x.db"}, "redis": {"enabled": false}}`)
	cm := NewConfigManager(path)
	cm.Loader().WithEnv(envMap(nil))
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c := cm.Connection(); c.Primary.Driver != "sqlite" || c.Cache.Enabled {
		t.Fatalf("connection = %+v", c)
	}
}

func TestPartialConfigRejected(t *testing.T) {
	path := writeFile(t, "config.yaml", "database:\n  host: db.internal\n")
	cm := NewConfigManager(path)
	cm.Loader().WithEnv(envMap(nil))
	if err := cm.LoadConfig(); !errs.Is(err, errs.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnvOnlyConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	cm := NewConfigManager("")
	cm.Loader().WithEnv(envMap(map[string]string{
		"DB_HOST": "localhost", "DB_DATABASE": "app", "DB_USERNAME": "u", "DB_PORT": "6543",
	}))
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("load without file: %v", err)
	}
	if cm.Connection().Primary.Port != 6543 {
		t.Fatalf("port = %d", cm.Connection().Primary.Port)
	}
}

func TestBadPortEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", sampleYAML)
	cm := NewConfigManager(path)
	cm.Loader().WithEnv(envMap(map[string]string{"DB_PORT": "five"}))
	if err := cm.LoadConfig(); !errs.Is(err, errs.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestExplicitMissingFile(t *testing.T) {
	cm := NewConfigManager(filepath.Join(t.TempDir(), "nope.yaml"))
	if err := cm.LoadConfig(); !errs.Is(err, errs.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
