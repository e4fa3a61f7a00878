package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tracewright/locatorcore/internal/config"
	"github.com/tracewright/locatorcore/internal/state"
)

// commandContext holds flags shared across subcommands and the
// lazily-loaded config, mirroring spindle's root.go + context.go split.
type commandContext struct {
	configPath string
	logLevel   string
	jsonOutput bool

	cfg     *config.Config
	logEntry *logrus.Entry
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}

	path := c.configPath
	if path == "" {
		resolved, err := config.DefaultConfigPath()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve config path: %w", err)
		}
		path = resolved
		if _, statErr := os.Stat(path); statErr != nil {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	return cfg, nil
}

func (c *commandContext) logger() *logrus.Entry {
	if c.logEntry != nil {
		return c.logEntry
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if c.jsonOutput {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(c.logLevel); err == nil {
		log.SetLevel(level)
	}
	c.logEntry = logrus.NewEntry(log)
	return c.logEntry
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion":
		return true
	}
	return false
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{logLevel: "info"}

	rootCmd := &cobra.Command{
		Use:           "locatorcore",
		Short:         "locatorcore — fallback-chain locator recording and replay",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path (defaults to "+configDirHint()+")")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newRecordingsCommand(ctx))
	rootCmd.AddCommand(newAnalyticsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDaemonCommand(ctx))

	return rootCmd
}

func configDirHint() string {
	root, err := state.RootDir()
	if err != nil {
		return "locatorcore.toml"
	}
	return root
}
