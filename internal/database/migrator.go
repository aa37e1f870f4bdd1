package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"quicktrain-backend/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// swapped in tests
var gooseUpContext = goose.UpContext

type Migrator struct {
	db *sql.DB
}

func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Run applies every pending migration in migrations/. Already applied
// versions are tracked by goose in goose_db_version.
func (m *Migrator) Run(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := gooseUpContext(ctx, m.db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("Migrations completed", zap.String("dir", "migrations"))
	return nil
}
