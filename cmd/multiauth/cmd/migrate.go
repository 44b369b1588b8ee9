package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the user database schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}

		users, err := openUserStore(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer users.Close()

		if err := users.Migrate(direction); err != nil {
			return fmt.Errorf("migrate %s failed: %w", direction, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done (%s)\n", direction, appConfig.DatabaseDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
