package main

import (
	"github.com/spf13/cobra"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/config"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/logging"
)

// Version is set at build time with -ldflags.
var Version = "0.0.0-dev"

// app is what PersistentPreRunE prepares for every subcommand.
type app struct {
	configPath string
	logLevel   string

	cm  *config.ConfigManager
	log *logging.ZapLogger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dbkeeper",
		Short:         "Database and cache maintenance runner",
		Long:          "dbkeeper connects to the primary database and the redis cache, runs the requested maintenance tasks in order and prints a per-task summary.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (yaml or json); defaults to ./config.yaml when present")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(a),
		newCheckCmd(a),
		newTasksCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads configuration and builds the logger.
func (a *app) load() error {
	a.cm = config.NewConfigManager(a.configPath)
	if err := a.cm.LoadConfig(); err != nil {
		return err
	}
	lc := a.cm.GetConfig().Logging
	if a.logLevel != "" {
		lc.Level = a.logLevel
	}
	log, err := logging.New(lc)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}
