package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// chainCmd represents the chain command.
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the node's chain",
	Long:  `Print every block in the node's chain along with its transactions.`,
	RunE:  chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func chainRun(cmd *cobra.Command, args []string) error {
	var dump struct {
		Length int `json:"length"`
		Chain  []struct {
			Index        uint64           `json:"index"`
			Transactions []map[string]any `json:"transactions"`
			TimeStamp    uint64           `json:"timestamp"`
			PrevHash     string           `json:"previous_hash"`
			Nonce        uint64           `json:"nonce"`
			Hash         string           `json:"hash"`
		} `json:"chain"`
	}
	if err := get("/v1/chain", &dump); err != nil {
		color.Red("chain: %s", err)
		return err
	}

	color.Cyan("chain length: %d", dump.Length)

	for _, blk := range dump.Chain {
		color.Yellow("block %d  nonce %d  txs %d", blk.Index, blk.Nonce, len(blk.Transactions))
		color.White("  hash: %s", blk.Hash)
		color.White("  prev: %s", blk.PrevHash)
		for _, tx := range blk.Transactions {
			color.White("    %v", tx)
		}
	}

	return nil
}
