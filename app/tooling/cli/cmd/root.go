// Package cmd contains the set of commands supported by the client.
package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var url string

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "chainpress",
	Short: "Client for a chainpress ledger node",
	Long:  `A client for submitting posts to, inspecting, and driving a running chainpress node.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the public node API.")
}

// get performs a GET against the node and decodes the JSON response into
// the provided value.
func get(path string, dataRecv any) error {
	resp, err := http.Get(url + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, dataRecv)
}

// post performs a POST against the node with a JSON body and decodes the
// JSON response into the provided value.
func post(path string, dataSend any, dataRecv any) error {
	data, err := json.Marshal(dataSend)
	if err != nil {
		return err
	}

	resp, err := http.Post(url+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, dataRecv)
}

func decode(resp *http.Response, dataRecv any) error {
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
		return fmt.Errorf("unable to decode response: %w", err)
	}

	return nil
}
