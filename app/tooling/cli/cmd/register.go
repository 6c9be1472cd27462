package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var peerHost string

// registerCmd represents the register command.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a peer with the node",
	Long:  `Register a peer host with the node's private API so both nodes start syncing with each other. Point --url at the private API for this command.`,
	RunE:  registerRun,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVarP(&peerHost, "host", "H", "", "Host of the peer to register.")
	registerCmd.MarkFlagRequired("host")
}

func registerRun(cmd *cobra.Command, args []string) error {
	reg := struct {
		Host string `json:"host"`
	}{
		Host: peerHost,
	}

	var dump struct {
		Length int `json:"length"`
	}
	if err := post("/v1/node/peer/register", reg, &dump); err != nil {
		color.Red("register: %s", err)
		return err
	}

	color.Green("registered, node chain length: %d", dump.Length)
	return nil
}
