package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3wrap/internal/ui"
	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

var uriCmd = &cobra.Command{
	Use:   "uri <id>",
	Short: "Show the metadata URI of a wrapped token",
	Long:  "Read uri(<id>) from the wrapper. This never sends a transaction and needs no signer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := wrapper.ParseAmount(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer s.Close()
		client, err := s.client(nil)
		if err != nil {
			return err
		}

		var sp *ui.Spinner
		if interactive(cmd) {
			sp = ui.NewSpinner(cmd.OutOrStdout(), fmt.Sprintf("Reading uri(%s)…", id))
			sp.Start()
		}
		uri, err := client.ViewURI(cmd.Context(), id)
		if sp != nil {
			sp.Stop()
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Wrapped token", [][2]string{
			{"ID", id.String()},
			{"URI", uri},
		}))
		return nil
	},
}
