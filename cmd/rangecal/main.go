package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"rangecal/internal/config"
	appLog "rangecal/internal/log"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		appLog.Error("rangecal failed", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "rangecal",
		Short:         "Date and date-range picker with web, terminal and screenshot hosts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "config.yaml", "Path to config file (created with defaults when missing)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	addServe(cmd, flags)
	addCapture(cmd, flags)
	addPick(cmd, flags)
	addVersion(cmd)
	return cmd
}

// loadConfig reads the config file and applies the effective log level.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	conf, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	level := conf.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	lvl, err := appLog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	appLog.SetLevel(lvl)
	return conf, nil
}
