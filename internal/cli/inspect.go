package cli

import (
	"strings"

	"github.com/mroshb/game_journal/internal/importer"
	"github.com/spf13/cobra"
)

// NewInspectWorkbookCommand creates the inspect-workbook command.
func NewInspectWorkbookCommand(_ *RootOptions) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "inspect-workbook FILE.xlsx",
		Short: "Show the first rows of each sheet before importing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			previews, err := importer.Preview(args[0], rows)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, sheet := range previews {
				printf(out, "Sheet %s\n", sheet.Name)
				for i, row := range sheet.Rows {
					printf(out, "  %d: %s\n", i+1, strings.Join(row, " | "))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 6, "rows to show per sheet")
	return cmd
}
