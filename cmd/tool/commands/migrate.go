package commands

import (
	"IdeaVault/internal/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update all tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		if err = database.Migrate(e.db); err != nil {
			return err
		}
		return printResult(cmd, "schema is up to date", map[string]bool{"migrated": true})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
