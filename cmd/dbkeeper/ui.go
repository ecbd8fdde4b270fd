package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/model"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/orchestrator"
)

// printSummary renders one row per requested task.
func printSummary(sum orchestrator.Summary) {
	rows := pterm.TableData{{"Task", "Status", "Duration", "Result"}}
	for _, r := range sum.Results {
		rows = append(rows, []string{
			r.TaskID,
			statusStyle(string(r.Status)),
			r.Duration.Round(time.Millisecond).String(),
			resultText(r),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(rows).Render()

	line := fmt.Sprintf("run %s: %d succeeded, %d failed in %s",
		sum.RunID, sum.Succeeded, sum.Failed, sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))
	if !sum.CacheAvailable {
		pterm.Warning.Println("cache unavailable; cache tasks reported 0")
	}
	if sum.Failed > 0 {
		pterm.Warning.Println(line)
		return
	}
	pterm.Success.Println(line)
}

func resultText(r model.TaskResult) string {
	if !r.OK() {
		return r.Error
	}
	switch v := r.Payload.(type) {
	case int64:
		return fmt.Sprintf("%d removed", v)
	case string:
		return v
	case model.VacuumOutcome:
		if len(v.Failed) > 0 {
			return fmt.Sprintf("%d tables, %d failed", len(v.Processed), len(v.Failed))
		}
		return fmt.Sprintf("%d tables", len(v.Processed))
	case []model.BackupFile:
		return fmt.Sprintf("%d files", len(v))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

func statusStyle(s string) string {
	switch s {
	case "success", "ok":
		return pterm.FgGreen.Sprint(s)
	case "warn":
		return pterm.FgYellow.Sprint(s)
	default:
		return pterm.FgRed.Sprint(s)
	}
}
