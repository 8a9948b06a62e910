package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, clients and projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

		fmt.Fprintln(w, "INVOICE\tCLIENT\tSTATUS\tTOTAL")
		for _, inv := range s.Invoices() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", inv.Number, inv.Client.Name, inv.Status, inv.Total())
		}
		fmt.Fprintln(w, "\nCLIENT\tCOMPANY\tEMAIL")
		for _, c := range s.Clients() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Company, c.Email)
		}
		fmt.Fprintln(w, "\nPROJECT\tCLIENT\tSTATUS\tPROGRESS")
		for _, p := range s.Projects() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\n", p.Title, p.ClientName, p.Status, p.Progress)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if !s.Online() {
			fmt.Fprintln(os.Stderr, "note: working from the local store only")
		}
		return nil
	},
}
