package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	author  string
	content string
)

// sendCmd represents the send command.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a post to the node",
	Long:  `Submit a post to the node's pending pool. The node stamps the timestamp and shares the post with its peers.`,
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&author, "author", "a", "", "Author of the post.")
	sendCmd.Flags().StringVarP(&content, "content", "c", "", "Content of the post.")
	sendCmd.MarkFlagRequired("author")
	sendCmd.MarkFlagRequired("content")
}

func sendRun(cmd *cobra.Command, args []string) error {
	tx := struct {
		Author  string `json:"author"`
		Content string `json:"content"`
	}{
		Author:  author,
		Content: content,
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := post("/v1/tx/submit", tx, &resp); err != nil {
		color.Red("send: %s", err)
		return err
	}

	color.Green("%s", resp.Status)
	return nil
}
