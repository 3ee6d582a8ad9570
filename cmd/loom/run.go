package main

import (
	"context"
	"os"

	"github.com/aretw0/loom/internal/cli"
	"github.com/aretw0/loom/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demo app interactively",
	Long: `Reads one command per line: an action name optionally followed by a JSON payload,
for example 'incr' or 'delete-favorites {"indices":[0]}'. Type 'help' for the list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")
		if !cmd.Flags().Changed("headless") && !tui.IsInteractive(os.Stdin) {
			headless = true
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.Run(sigCtx, cfg, cli.RunOptions{
			SessionID: sessionID,
			Fresh:     fresh,
			Headless:  headless,
			JSON:      jsonMode,
			Markdown:  !headless && tui.IsInteractive(os.Stdout),
			In:        os.Stdin,
			Out:       os.Stdout,
		}, logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", cli.DefaultSessionID, "Session ID to open or create")
	runCmd.Flags().Bool("fresh", false, "Discard the saved session before starting")
	runCmd.Flags().Bool("headless", false, "No banner or prompt (default when stdin is not a terminal)")
	runCmd.Flags().Bool("json", false, "Print every state as a JSON line")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
