package commands

import (
	"IdeaVault/internal/wire"

	"github.com/spf13/cobra"
)

var populateCmd = &cobra.Command{
	Use:   "populate-channels",
	Short: "Create bot users and sample posts for every community channel",
	Long: `Creates the bot accounts if they do not exist yet, then fills each fixed channel
with sample posts, likes and comments. Running it again only adds what is missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		res, err := wire.NewSeedService(e.repos, e.cfg).PopulateChannels(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd, res.Message, res)
	},
}

func init() {
	rootCmd.AddCommand(populateCmd)
}
