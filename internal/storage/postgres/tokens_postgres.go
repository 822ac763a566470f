package postgres

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokensPostgres struct {
	db *pgxpool.Pool
}

func NewTokensPostgres(db *pgxpool.Pool) *TokensPostgres {
	return &TokensPostgres{db: db}
}

func (r *TokensPostgres) hashToken(token *jwt.Token) string {
	h := sha256.Sum256([]byte(token.Raw))
	return base64.StdEncoding.EncodeToString(h[:])
}

func (r *TokensPostgres) Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	hashedToken := r.hashToken(token)
	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO refresh_tokens (user_id, hashed_token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at, expires_at
	`
	refreshToken := &models.RefreshToken{
		UserID:      userID,
		HashedToken: hashedToken,
	}
	err = r.db.QueryRow(ctx, query, userID, hashedToken, expiresAt.Time).Scan(&refreshToken.CreatedAt, &refreshToken.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return refreshToken, nil
}

func (r *TokensPostgres) ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	hashedToken := r.hashToken(token)
	query := `
		SELECT user_id, hashed_token, created_at, expires_at
		FROM refresh_tokens
		WHERE user_id = $1 AND hashed_token = $2
	`
	refreshToken := models.RefreshToken{}
	err := r.db.QueryRow(ctx, query, userID, hashedToken).Scan(
		&refreshToken.UserID,
		&refreshToken.HashedToken,
		&refreshToken.CreatedAt,
		&refreshToken.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrTokenNotFound
		}
		return nil, err
	}
	return &refreshToken, nil
}

func (r *TokensPostgres) DeleteUserTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}
