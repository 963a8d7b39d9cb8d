// Command shopctl runs one-off maintenance tasks against the shop database:
// schema migration, admin account setup and demo catalogue seeding.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/BookCnk/sit-football-club/internal/config"
	"github.com/BookCnk/sit-football-club/internal/repositories"
	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// env holds what every subcommand needs once the root command has run.
type env struct {
	v   *viper.Viper
	cfg *config.Config
	db  *gorm.DB
}

func newRootCmd() *cobra.Command {
	e := &env{v: config.New()}

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Maintenance tasks for the club shop database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log.SetOutput(cmd.ErrOrStderr())
			cfg, err := config.FromViper(e.v)
			if err != nil {
				return err
			}
			db, err := repositories.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			e.cfg, e.db = cfg, db
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if e.db == nil {
				return nil
			}
			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.String("database-driver", "", "postgres or sqlite (overrides DATABASE_DRIVER)")
	flags.String("database-dsn", "", "connection string (overrides DATABASE_DSN)")
	_ = e.v.BindPFlag("DATABASE_DRIVER", flags.Lookup("database-driver"))
	_ = e.v.BindPFlag("DATABASE_DSN", flags.Lookup("database-dsn"))

	root.AddCommand(newMigrateCmd(e), newCreateAdminCmd(e), newSeedCmd(e))
	return root
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := repositories.Migrate(e.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newCreateAdminCmd(e *env) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote and reset an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := repositories.Migrate(e.db); err != nil {
				return err
			}
			auth := services.NewAuthService(repositories.NewGORMUserRepository(e.db), e.cfg.JWTSecret)
			user, created, err := auth.EnsureAdmin(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			verb := "Updated"
			if created {
				verb = "Created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s admin %s (ID: %d)\n", verb, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password, at least 6 characters")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add demo merchandise when the catalogue is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := repositories.Migrate(e.db); err != nil {
				return err
			}
			items := services.NewShopItemService(repositories.NewGORMShopItemRepository(e.db))
			n, err := items.SeedDemoItems(cmd.Context())
			if err != nil {
				return err
			}
			noun := "items"
			if n == 1 {
				noun = "item"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d shop %s.\n", n, noun)
			return nil
		},
	}
}
