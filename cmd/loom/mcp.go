package main

import (
	"context"
	"os"

	"github.com/aretw0/loom/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server over stdio",
	Long: `Exposes demo app sessions as MCP tools (list_actions, list_sessions,
get_state, send_action) on standard input and output, for local agents.
Use "serve --mcp" for the SSE transport.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.MCP(sigCtx, cfg, cli.MCPOptions{In: os.Stdin, Out: os.Stdout}, logger)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
