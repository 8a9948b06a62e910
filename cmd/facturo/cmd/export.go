package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all state as a single JSON document",
	Long: `Export writes invoices, clients, projects and settings as one JSON
document. Without a file argument the document goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return s.Export(os.Stdout)
		}
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		if err := s.Export(f); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "exported to", args[0])
		return nil
	},
}
