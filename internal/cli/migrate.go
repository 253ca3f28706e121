package cli

import (
	"context"

	"github.com/spf13/cobra"

	"quiz-portal/internal/app"
	"quiz-portal/internal/config"
	"quiz-portal/internal/infra/memory"
	"quiz-portal/internal/infra/sqldb"
	"quiz-portal/internal/logging"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

// NewInitDBCmd drops and recreates the schema, then seeds the admin account.
func NewInitDBCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Clear existing data, create new tables and seed the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitDB(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New("quiz-portal", cfg.Log.Level)

	db, err := sqldb.Open(cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	group, err := sqldb.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
		return nil
	}
	log.WithField("group", group.String()).Info("migrations applied")
	return nil
}

func runInitDB(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New("quiz-portal", cfg.Log.Level)

	db, err := sqldb.Open(cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqldb.Reset(ctx, db); err != nil {
		return err
	}

	// Seeding needs no live sessions, so a throwaway store will do.
	auth := app.NewAuthService(sqldb.NewStore(db), memory.NewSessionStore(), cfg.Server.SecretKey, 0)
	admin, _, err := auth.SeedAdmin(ctx, app.Credentials{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		return err
	}
	log.WithField("username", admin.Username).Info("initialized the database")
	return nil
}
