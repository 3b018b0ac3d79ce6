// Package cmd implements the shipctl operator CLI: a thin JSON client for
// the backend's HTTP API.
package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version, buildDate string) *cobra.Command {
	var serverURL string
	root := &cobra.Command{
		Use:   "shipctl",
		Short: "Operator CLI for the store's shipping backend",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server base URL")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newAuthCmd(&serverURL))
	root.AddCommand(newProductsCmd(&serverURL))
	root.AddCommand(newShippingCmd(&serverURL))
	return root
}
