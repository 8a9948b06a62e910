package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/facturo/facturo/internal/models"
	"github.com/facturo/facturo/internal/render"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <invoice id or number>",
	Short: "Render an invoice to a printable PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		inv, ok := s.Invoice(args[0])
		if !ok {
			inv, ok = findByNumber(s.Invoices(), args[0])
		}
		if !ok {
			return fmt.Errorf("no invoice with id or number %q", args[0])
		}
		data, err := render.PDF(inv, s.Settings(), cfg.Layout)
		if err != nil {
			return err
		}
		out := renderOut
		if out == "" {
			out = inv.Number + ".pdf"
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "wrote", out)
		return nil
	},
}

func findByNumber(invoices []models.Invoice, number string) (models.Invoice, bool) {
	for _, inv := range invoices {
		if inv.Number == number {
			return inv, true
		}
	}
	return models.Invoice{}, false
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default \"<number>.pdf\")")
}
