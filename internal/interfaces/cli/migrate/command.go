package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"coursepay/internal/infrastructure/config"
	"coursepay/internal/infrastructure/database"
	"coursepay/internal/infrastructure/migration"
	"coursepay/internal/shared/logger"
)

const scriptsPath = "internal/infrastructure/migration/scripts"

var (
	env   string
	name  string
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(m *migration.Migrator) error {
				return m.Up(database.Get())
			})
		},
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(m *migration.Migrator) error {
				return m.Down(database.Get(), steps)
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(m *migration.Migrator) error {
				return m.Status(database.Get())
			})
		},
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("migration name is required")
			}
			return migration.NewMigrator(scriptsPath).Create(name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "m", "", "Migration name")

	return cmd
}

func withDB(fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, "release"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	return fn(migration.NewMigrator(scriptsPath))
}
