package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var importYes bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all state with an exported JSON document",
	Long: `Import validates the document and then replaces the in-memory and
local-store state wholesale. This discards the current state, so a
confirmation is required unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !importYes {
			fmt.Fprintf(os.Stderr, "This replaces ALL current data with %s. Type 'yes' to continue: ", args[0])
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return err
			}
			if strings.TrimSpace(line) != "yes" {
				fmt.Fprintln(os.Stderr, "aborted")
				return nil
			}
		}
		s, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		if err := s.Import(cmd.Context(), f); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "imported", args[0])
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importYes, "yes", false, "skip the confirmation prompt")
}
