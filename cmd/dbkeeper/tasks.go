package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/task"
)

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the available maintenance tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := pterm.TableData{{"ID", "Requires cache", "Description"}}
			for _, d := range task.DefaultRegistry().Descriptors() {
				rows = append(rows, []string{d.ID, strconv.FormatBool(d.RequiresCache), d.Description})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}
			pterm.Info.Println("'all' runs every task except backup_table, in the order above")
			return nil
		},
	}
}
