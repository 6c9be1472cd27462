package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// mineCmd represents the mine command.
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Signal the node to mine a block",
	Long:  `Signal the node's mining worker to seal the pending transactions into a new block. An empty pool is a no-op.`,
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := get("/v1/mining/signal", &resp); err != nil {
		color.Red("mine: %s", err)
		return err
	}

	color.Green("%s", resp.Status)
	return nil
}
