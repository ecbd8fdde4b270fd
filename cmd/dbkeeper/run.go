package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/metrics"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/telemetry"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/conn"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/core"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/executor"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/orchestrator"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/task"
)

type runFlags struct {
	tasks         []string
	auditDays     int
	workspaceDays int
	redisPattern  string
	vacuumTables  []string
	backupTables  []string
	reportsDir    string
	reportFormat  string
	jsonOut       bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run maintenance tasks",
		Example: `  dbkeeper run --tasks clean_sessions,clean_audit_logs,generate_report
  dbkeeper run --tasks all --audit-days 60
  dbkeeper run --tasks backup_table --backup-tables audit_logs,sessions`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			defer a.close()
			return a.run(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVarP(&f.tasks, "tasks", "t", []string{consts.TASK_GENERATE_REPORT}, "comma-separated task ids in execution order, or 'all'")
	fl.IntVar(&f.auditDays, "audit-days", 0, "audit log retention in days")
	fl.IntVar(&f.workspaceDays, "workspace-days", 0, "deleted workspace retention in days")
	fl.StringVar(&f.redisPattern, "redis-pattern", "", "glob of cache keys removed by clean_redis")
	fl.StringSliceVar(&f.vacuumTables, "vacuum-tables", nil, "tables for vacuum_tables (default: all user tables)")
	fl.StringSliceVar(&f.backupTables, "backup-tables", nil, "tables exported by backup_table")
	fl.StringVar(&f.reportsDir, "reports-dir", "", "directory for data reports")
	fl.StringVar(&f.reportFormat, "report-format", "", "report file format: json or yaml")
	fl.BoolVar(&f.jsonOut, "json", false, "print the run summary as JSON instead of a table")
	return cmd
}

// params layers flags that were set explicitly over the configured values.
func (f *runFlags) params(cmd *cobra.Command, base task.Params) task.Params {
	fl := cmd.Flags()
	if fl.Changed("audit-days") {
		base.AuditRetentionDays = task.Days(f.auditDays)
	}
	if fl.Changed("workspace-days") {
		base.WorkspaceRetentionDays = task.Days(f.workspaceDays)
	}
	if fl.Changed("redis-pattern") {
		base.RedisPattern = f.redisPattern
	}
	if fl.Changed("vacuum-tables") {
		base.VacuumTables = f.vacuumTables
	}
	if fl.Changed("backup-tables") {
		base.BackupTables = f.backupTables
	}
	if fl.Changed("reports-dir") {
		base.ReportsDir = f.reportsDir
	}
	if fl.Changed("report-format") {
		base.ReportFormat = f.reportFormat
	}
	return base
}

func (a *app) run(cmd *cobra.Command, f *runFlags) error {
	ctx := cmd.Context()
	cfg := a.cm.GetConfig()

	// metrics and tracing are optional; a failure to start either is logged
	// and the run goes on without it
	telemetryComp := telemetry.NewComponent(cfg.Telemetry, a.log)
	metricsComp := metrics.NewComponent(cfg.Metrics, a.log)
	container := core.NewContainer()
	lifecycle := core.NewLifecycleManager(container, a.log)
	defer lifecycle.StopAll(context.WithoutCancel(ctx))
	if cfg.Telemetry.Enabled {
		_ = container.Register(telemetryComp)
		// started first so it is stopped last, after the final metrics push
		if err := lifecycle.Start(ctx, consts.COMPONENT_TELEMETRY); err != nil {
			a.log.Warn(ctx, "tracing unavailable", zap.Error(err))
		}
	}
	if cfg.Metrics.Enabled {
		metricsComp.SetTracerProvider(telemetryComp.Provider())
		_ = container.Register(metricsComp)
	}
	if err := lifecycle.StartAll(ctx); err != nil {
		return err
	}
	opts := []executor.Option{executor.WithTracer(telemetryComp.Tracer(consts.APP_NAME))}
	if metricsComp.IsActive() {
		opts = append(opts, executor.WithRecorder(metricsComp))
	}

	manager, err := conn.NewManager(a.cm.Connection(), a.log)
	if err != nil {
		return err
	}
	registry := task.DefaultRegistry()
	orch := orchestrator.New(registry, executor.New(registry, a.log, opts...), manager, a.log)

	sum, err := orch.Run(ctx, orchestrator.Request{
		Tasks:  f.tasks,
		Params: f.params(cmd, a.cm.TaskParams()),
	})
	if err != nil {
		return err
	}
	if f.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	printSummary(sum)
	return nil
}
