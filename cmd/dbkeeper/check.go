package main

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/preflight"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify configuration, output directories and connectivity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			defer a.close()

			res := preflight.Run(cmd.Context(), a.cm.Connection(), a.cm.TaskParams(), a.log)
			rows := pterm.TableData{{"Check", "Status", "Detail"}}
			for _, c := range res.Checks {
				rows = append(rows, []string{c.Name, statusStyle(string(c.Status)), c.Detail})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}
			if !res.OK() {
				return errors.New("preflight checks failed")
			}
			pterm.Success.Println("ready for maintenance")
			return nil
		},
	}
}
