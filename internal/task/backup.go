package task

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
)

type backupTable struct{}

func (backupTable) Descriptor() Descriptor {
	return Descriptor{
		ID:          consts.TASK_BACKUP_TABLE,
		Description: "export the listed tables to timestamped CSV files",
	}
}

// Execute writes <dir>/<table>_<YYYYMMDD_HHMMSS>.csv for every table in
// Params.BackupTables. Tables that fail leave no partial file behind.
func (backupTable) Execute(ctx context.Context, env Env) (any, error) {
	s := env.Handle.Store
	if s == nil {
		return nil, errNoStore
	}
	if len(env.Params.BackupTables) == 0 {
		return nil, errors.New("no tables to back up; set backup_tables")
	}
	if err := os.MkdirAll(env.Params.BackupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	log := env.logger()
	stamp := env.Now.UTC().Format("20060102_150405")

	files := make([]model.BackupFile, 0, len(env.Params.BackupTables))
	var failures []error
	for _, table := range env.Params.BackupTables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := exportOne(ctx, env, table, stamp)
		if err != nil {
			log.Error(ctx, "table backup failed", zap.String("table", table), zap.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", table, err))
			continue
		}
		log.Info(ctx, "table backed up", zap.String("table", table), zap.String("path", f.Path), zap.Int64("rows", f.Rows))
		files = append(files, f)
	}
	if len(failures) > 0 {
		return nil, errors.Join(failures...)
	}
	return files, nil
}

func exportOne(ctx context.Context, env Env, table, stamp string) (model.BackupFile, error) {
	s := env.Handle.Store
	exists, err := s.TableExists(ctx, table)
	if err != nil {
		return model.BackupFile{}, err
	}
	if !exists {
		return model.BackupFile{}, fmt.Errorf("table does not exist")
	}

	name := strings.NewReplacer("/", "_", "\\", "_", ".", "_").Replace(table)
	path := filepath.Join(env.Params.BackupDir, name+"_"+stamp+".csv")
	f, err := os.Create(path)
	if err != nil {
		return model.BackupFile{}, err
	}
	rows, err := s.ExportCSV(ctx, table, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return model.BackupFile{}, err
	}
	return model.BackupFile{Table: table, Path: path, Rows: rows}, nil
}
