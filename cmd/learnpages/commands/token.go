package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/learnpages/internal/services"
)

func tokenCmd() *cobra.Command {
	var learner, session string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			learnerID, err := uuid.Parse(learner)
			if err != nil {
				return fmt.Errorf("--learner: %w", err)
			}
			sessionID := uuid.New()
			if session != "" {
				if sessionID, err = uuid.Parse(session); err != nil {
					return fmt.Errorf("--session: %w", err)
				}
			}
			auth, err := services.NewAuthService(log, cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
			if err != nil {
				return err
			}
			token, err := auth.IssueAccessToken(learnerID, sessionID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&learner, "learner", "", "learner id")
	cmd.Flags().StringVar(&session, "session", "", "session id (default random)")
	_ = cmd.MarkFlagRequired("learner")
	return cmd
}
