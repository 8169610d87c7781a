package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mroshb/game_journal/internal/config"
	"github.com/mroshb/game_journal/internal/events"
	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/services"
	"github.com/spf13/cobra"
)

type publishOptions struct {
	mutationID string
	userID     uint
	gameID     uint
	kind       string
	status     string
	score      int
	duration   int
	note       string
}

// NewPublishCommand creates the publish-mutation command.
func NewPublishCommand(_ *RootOptions) *cobra.Command {
	opts := &publishOptions{}

	cmd := &cobra.Command{
		Use:   "publish-mutation",
		Short: "Publish one entry mutation to NATS",
		Long: `Publish one entry mutation on the configured NATS subject, as the
journal service would. Useful to exercise the activity consumer.

Examples:
  journalctl publish-mutation --user 1 --game 3 --kind RATED --score 8
  journalctl publish-mutation --user 1 --game 3 --kind STATUS_CHANGE --status COMPLETED`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.mutation(cmd)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.NATSURL == "" {
				return fmt.Errorf("NATS_URL is not set")
			}

			nc, err := events.Connect(cfg.NATSURL, "journalctl")
			if err != nil {
				return err
			}
			defer nc.Close()

			if err := events.Publish(nc, cfg.NATSSubject, m); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "published %s to %s\n", m.MutationID, cfg.NATSSubject)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.mutationID, "id", "", "mutation id (default: generated)")
	cmd.Flags().UintVar(&opts.userID, "user", 0, "actor user id (required)")
	cmd.Flags().UintVar(&opts.gameID, "game", 0, "game id (required)")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "STATUS_CHANGE | RATED | SESSION_LOGGED (required)")
	cmd.Flags().StringVar(&opts.status, "status", "", "entry status for STATUS_CHANGE")
	cmd.Flags().IntVar(&opts.score, "score", 0, "score for RATED")
	cmd.Flags().IntVar(&opts.duration, "duration", 0, "minutes played for SESSION_LOGGED")
	cmd.Flags().StringVar(&opts.note, "note", "", "optional note")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func (o *publishOptions) mutation(cmd *cobra.Command) (services.EntryMutation, error) {
	kind, err := models.ParseActivityVerb(o.kind)
	if err != nil {
		return services.EntryMutation{}, err
	}

	m := services.EntryMutation{
		MutationID: o.mutationID,
		UserID:     o.userID,
		GameID:     o.gameID,
		Kind:       kind,
		Note:       o.note,
		OccurredAt: time.Now().UTC(),
	}
	if m.MutationID == "" {
		m.MutationID = newMutationID()
	}
	if o.status != "" {
		if m.Status, err = models.ParseEntryStatus(o.status); err != nil {
			return services.EntryMutation{}, err
		}
	}
	if cmd.Flags().Changed("score") {
		score := o.score
		m.Score = &score
	}
	if cmd.Flags().Changed("duration") {
		duration := o.duration
		m.DurationMin = &duration
	}
	return m, nil
}

func newMutationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
