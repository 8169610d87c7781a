package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mroshb/game_journal/internal/config"
	"github.com/mroshb/game_journal/internal/security"
	"github.com/spf13/cobra"
)

// NewIssueTokenCommand creates the issue-token command.
func NewIssueTokenCommand(_ *RootOptions) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue-token USER_ID",
		Short: "Print a bearer token for a user (development only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || userID == 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			token, err := security.GenerateJWTWithTTL(uint(userID), cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", security.DefaultTokenTTL, "token lifetime")
	return cmd
}
