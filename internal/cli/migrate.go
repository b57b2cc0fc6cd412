package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/edificio/internal/repository"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *repository.Migrator) error { return m.Up() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration (drops all data)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *repository.Migrator) error { return m.Down() })
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *repository.Migrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d", version)
			if dirty {
				fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		})
	},
}

func withMigrator(cmd *cobra.Command, fn func(m *repository.Migrator) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := repository.Open(cmd.Context(), repository.Dialect(cfg.DatabaseDriver), cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		return err
	}
	defer db.Conn().Close()

	m, err := repository.NewMigrator(db, logger)
	if err != nil {
		return err
	}
	return fn(m)
}
