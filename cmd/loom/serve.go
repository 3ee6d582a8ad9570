package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/loom/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve demo app sessions over HTTP",
	Long:  `Exposes sessions as a JSON API with server-sent events, plus Prometheus metrics and MCP tools when enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("metrics") {
			cfg.Metrics.Enabled, _ = cmd.Flags().GetBool("metrics")
		}
		if cmd.Flags().Changed("mcp") {
			cfg.MCP.Enabled, _ = cmd.Flags().GetBool("mcp")
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		err = cli.Serve(sigCtx, cfg, cli.ServeOptions{
			Ready: func(addr string) {
				fmt.Fprintf(os.Stderr, "Serving loom on %s\n", addr)
			},
		}, logger)
		if sig := sigCtx.Signal(); sig != nil {
			fmt.Fprintf(os.Stderr, "Stopped by %v\n", sig)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	serveCmd.Flags().Bool("mcp", false, "Mount the MCP SSE transport under /mcp")
}
