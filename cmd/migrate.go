package cmd

import (
	"fmt"
	"strconv"

	"summa/config"
	"summa/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
	Long:  `Apply, roll back or inspect the database schema migrations.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return database.MigrateUp(config.Get().GetDatabaseURL())
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations, one step by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid steps %q: must be a positive integer", args[0])
			}
			steps = n
		}
		return database.MigrateDown(config.Get().GetDatabaseURL(), steps)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := database.MigrateStatus(config.Get().GetDatabaseURL())
		if err != nil {
			return err
		}
		if !status.Applied {
			fmt.Println("No migrations applied")
			return nil
		}
		fmt.Printf("Current version: %d\n", status.Version)
		if status.Dirty {
			fmt.Println("WARNING: database is in a dirty state, fix it manually before migrating again")
		}
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
