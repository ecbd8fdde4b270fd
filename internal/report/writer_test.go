package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

func sampleReport() model.Report {
	return model.Report{
		Timestamp:   fixedNow,
		Tables:      []model.TableStat{{Schema: "public", Name: "sessions", RowCount: 2}},
		TaskResults: []model.TaskResult{model.Succeeded("clean_sessions", int64(3))},
	}
}

func TestWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := NewWriter(dir, "json").Write(sampleReport())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "data_report_20260504_030201.json" {
		t.Fatalf("path = %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := back["cache_info"]; ok {
		t.Fatalf("cache_info should be absent")
	}
}

func TestWriteYAML(t *testing.T) {
	path, err := NewWriter(t.TempDir(), "yaml").Write(sampleReport())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasSuffix(path, ".yaml") {
		t.Fatalf("path = %s", path)
	}
	b, _ := os.ReadFile(path)
	var back map[string]any
	if err := yaml.Unmarshal(b, &back); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if back["tables"] == nil {
		t.Fatalf("tables missing: %s", b)
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := NewWriter(t.TempDir(), "xml").Write(sampleReport()); err == nil {
		t.Fatalf("expected error")
	}
}
