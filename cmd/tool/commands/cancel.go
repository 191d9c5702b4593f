package commands

import (
	"IdeaVault/internal/wire"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cancelUserID uint64

var cancelCmd = &cobra.Command{
	Use:   "cancel-subscription",
	Short: "Cancel the active pro membership of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cancelUserID == 0 {
			return errors.New("--user is required")
		}
		e, err := setup()
		if err != nil {
			return err
		}
		m, err := wire.NewSubscriptionService(e.repos, e.publisher, e.cfg).CancelSubscription(cmd.Context(), cancelUserID)
		if err != nil {
			return err
		}
		text := fmt.Sprintf("membership %d cancelled for user %d", m.ID, m.UserID)
		if m.EndsAt != nil {
			text += ", pro access ends " + m.EndsAt.Format("2006-01-02 15:04")
		}
		return printResult(cmd, text, m)
	},
}

func init() {
	cancelCmd.Flags().Uint64Var(&cancelUserID, "user", 0, "User ID whose subscription is cancelled")
	rootCmd.AddCommand(cancelCmd)
}
