package cli

import (
	"github.com/mroshb/game_journal/internal/database"
	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/repositories"
	"github.com/spf13/cobra"
)

// NewCreateUserCommand creates a local user, for development databases
// that are not fed by the account service.
func NewCreateUserCommand(_ *RootOptions) *cobra.Command {
	var avatarURL string

	cmd := &cobra.Command{
		Use:   "create-user USERNAME",
		Short: "Create a local user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			user := &models.User{Username: args[0], AvatarURL: avatarURL}
			if err := repositories.NewUserRepository(db).CreateUser(cmd.Context(), user); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&avatarURL, "avatar-url", "", "optional avatar URL")
	return cmd
}
