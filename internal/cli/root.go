package cli

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/mroshb/game_journal/internal/config"
	"github.com/mroshb/game_journal/internal/database"
	"github.com/mroshb/game_journal/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command for journalctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "journalctl",
		Short: "GameJournal administration",
		Long:  "Operational commands for the GameJournal social graph service.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(opts.EnvFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("load %s: %w", opts.EnvFile, err)
			}
			logger.Init()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "environment file to load")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateUserCommand(opts))
	cmd.AddCommand(NewInspectWorkbookCommand(opts))
	cmd.AddCommand(NewImportActivityCommand(opts))
	cmd.AddCommand(NewIssueTokenCommand(opts))
	cmd.AddCommand(NewPublishCommand(opts))

	return cmd
}

// openDB loads config and connects to the configured database.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
