package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

const fileTimeLayout = "20060102_150405"

// Writer persists reports as data_report_YYYYMMDD_HHMMSS.{json,yaml}.
type Writer struct {
	dir    string
	format string
}

func NewWriter(dir, format string) *Writer {
	if format == "" {
		format = "json"
	}
	return &Writer{dir: dir, format: format}
}

// PathFor is the file a report stamped ts will be written to.
func (w *Writer) PathFor(ts time.Time) string {
	return filepath.Join(w.dir, "data_report_"+ts.UTC().Format(fileTimeLayout)+"."+w.format)
}

func (w *Writer) Write(rep model.Report) (string, error) {
	path := w.PathFor(rep.Timestamp)
	return path, w.WriteTo(path, rep)
}

// WriteTo encodes rep in the writer's format and writes it to path,
// creating the directory if needed.
func (w *Writer) WriteTo(path string, rep model.Report) error {
	data, err := w.encode(rep)
	if err != nil {
		return errs.Wrap(errs.KindReport, "encode report", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.KindReport, "create reports dir", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.KindReport, "write report", err)
	}
	return nil
}

func (w *Writer) encode(rep model.Report) ([]byte, error) {
	switch w.format {
	case "json":
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", w.format)
	}
}
