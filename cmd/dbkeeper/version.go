package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dbkeeper version",
		Run: func(cmd *cobra.Command, _ []string) {
			pterm.Printfln("dbkeeper %s", Version)
		},
	}
}
