package sqldb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"quiz-portal/internal/infra/sqldb/migrations"
)

// Migrate applies every pending schema migration.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return group, nil
}

// Reset drops every application table plus the migration bookkeeping and
// recreates the schema from scratch.
func Reset(ctx context.Context, db *bun.DB) error {
	for _, table := range []string{
		"submissions", "options", "questions", "quizzes", "users",
		"bun_migrations", "bun_migration_locks",
	} {
		if _, err := db.NewDropTable().Table(table).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	_, err := Migrate(ctx, db)
	return err
}
