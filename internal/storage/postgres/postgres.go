package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres unique_violation. Duplicate enroll/submit races land here and are
// translated to conflict sentinels by the repositories.
const uniqueViolationCode = "23505"

type Storage struct {
	Pool *pgxpool.Pool
}

func NewPostgresPool(username, password, host, port, dbName string) (*Storage, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", username, password, host, port, dbName)
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &Storage{Pool: pool}, nil
}

func (p *Storage) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

func UnwrapPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

func isUniqueViolation(err error) bool {
	pgErr := UnwrapPgError(err)
	return pgErr != nil && pgErr.Code == uniqueViolationCode
}
