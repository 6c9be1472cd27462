package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// pendingCmd represents the pending command.
var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Print the uncommitted transactions",
	Long:  `Print the transactions queued in the node's pending pool that have not been mined into a block yet.`,
	RunE:  pendingRun,
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}

func pendingRun(cmd *cobra.Command, args []string) error {
	var txs []map[string]any
	if err := get("/v1/tx/uncommitted/list", &txs); err != nil {
		color.Red("pending: %s", err)
		return err
	}

	if len(txs) == 0 {
		color.Cyan("no pending transactions")
		return nil
	}

	for _, tx := range txs {
		color.White("%v", tx)
	}

	return nil
}
