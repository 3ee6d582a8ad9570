package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/loom/internal/config"
	"github.com/aretw0/loom/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "loom runs Store/Reducer/Effect applications",
	Long: `loom drives the demo counter app from the terminal (run), over HTTP (serve)
or as MCP tools for agents (mcp).
Sessions are saved to the storage backend configured in loom.yaml.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Configuration file (YAML, or JSON with a .json extension)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides the config file)")
	rootCmd.PersistentFlags().String("storage", "", "Storage driver: memory, file, redis or sqlite (overrides the config file)")
}

// loadConfig reads the config file and applies persistent flag overrides.
// The default file may be missing; an explicit --config must exist.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags().Changed("config"))
	if err != nil {
		return cfg, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if driver, _ := cmd.Flags().GetString("storage"); driver != "" {
		cfg.Storage.Driver = driver
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	return cfg, logging.New(level), nil
}
