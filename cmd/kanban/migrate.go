package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gosuda/kanban/internal/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [" + strings.Join(postgres.MigrationCommands, "|") + "]",
	Short:     "Manage the PostgreSQL schema",
	Long:      "Apply, roll back or inspect the embedded SQL migrations. Defaults to up.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: postgres.MigrationCommands,
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := connectPostgres(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		defer store.Close()

		return postgres.Migrate(cmd.Context(), store.Pool(), command)
	},
}
