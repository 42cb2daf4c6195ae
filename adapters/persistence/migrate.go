package persistence

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/pkg/logger"
)

// RunMigrations applies every pending up migration from sourceURL
// (e.g. "file://migrations") to the database at dsn.
func RunMigrations(sourceURL, dsn string, log logger.Logger) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance failed: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Database schema is up to date.")
			return nil
		}
		return fmt.Errorf("run migrations failed: %w", err)
	}

	version, _, _ := m.Version()
	log.Info("Database migrated.", zap.Uint("version", version))
	return nil
}
