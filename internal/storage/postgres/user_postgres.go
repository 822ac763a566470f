package postgres

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserPostgres struct {
	db *pgxpool.Pool
}

func NewUserPostgres(db *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{db: db}
}

func (r *UserPostgres) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, name, email, password, role
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password, role
		FROM users
		WHERE email = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgres) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, name, email, password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.Password, user.Role).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, app_errors.ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

func (r *UserPostgres) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, name, email, password, role
		FROM users
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserPostgres) ListUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	query := `
		SELECT id, name, email, password, role
		FROM users
		WHERE role = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserPostgres) UpdateUser(ctx context.Context, user models.User) error {
	query := `
		UPDATE users
		   SET name = $2, email = $3, role = $4
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return app_errors.ErrUserExists
		}
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}

func (r *UserPostgres) DeleteUser(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}
