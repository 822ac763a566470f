package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type Migrator struct {
	m *migrate.Migrate
}

func NewMigrator(username, password, host, port, dbName string) (*Migrator, error) {
	dsn := fmt.Sprintf("pgx5://%s:%s@%s:%s/%s", username, password, host, port, dbName)
	m, err := migrate.New("file://db/migrations", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrator: %w", err)
	}
	return &Migrator{m: m}, nil
}

func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (mg *Migrator) Down() error {
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
