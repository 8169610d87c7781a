package cli

import (
	"github.com/mroshb/game_journal/internal/database"
	"github.com/mroshb/game_journal/internal/importer"
	"github.com/mroshb/game_journal/internal/repositories"
	"github.com/mroshb/game_journal/internal/services"
	"github.com/spf13/cobra"
)

// NewImportActivityCommand creates the import-activity command.
func NewImportActivityCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-activity FILE.xlsx",
		Short: "Import journal activity from a spreadsheet",
		Long: `Import journal activity rows from every sheet of an xlsx workbook.

Columns (first row is a header and is skipped):
  username | game title | verb | status | score | duration_min | note | occurred_at

Games are matched by title and created when missing. Rows that were
imported before are skipped, so a workbook can be imported again safely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			users := repositories.NewUserRepository(db)
			games := repositories.NewGameRepository(db)
			recorder := services.NewActivityService(repositories.NewActivityRepository(db), users, games)

			result, err := importer.New(users, games, recorder).ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rowErr := range result.Errors {
				printf(out, "skipped %s\n", rowErr.Error())
			}
			printf(out, "imported %d, already present %d, skipped %d\n", result.Imported, result.Duplicates, len(result.Errors))
			return nil
		},
	}
}
