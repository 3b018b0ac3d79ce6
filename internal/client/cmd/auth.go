package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newAuthCmd(serverURL *string) *cobra.Command {
	cmd := &cobra.Command{Use: "auth", Short: "Melhor Envio connection"}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show connection status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(*serverURL, "/api/melhorenvio/token")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "connect",
		Short: "Print the provider authorization URL to open in a browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{
				CheckRedirect: func(req *http.Request, via []*http.Request) error {
					return http.ErrUseLastResponse
				},
			}
			resp, err := client.Get(*serverURL + "/api/melhorenvio/auth")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusFound {
				return fmt.Errorf("expected a redirect, got %s", resp.Status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Header.Get("Location"))
			return nil
		},
	})

	return cmd
}
