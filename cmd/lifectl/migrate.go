package main

import (
	"fmt"
	"studylife-go/pkg/database"

	"github.com/spf13/cobra"
)

func init() {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
	rootCmd.AddCommand(migrateCmd)
}
