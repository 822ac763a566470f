package auth

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"ClassBridge/pkg/logger"
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type authRepo interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type tokenRepo interface {
	Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	DeleteUserTokens(ctx context.Context, userID uuid.UUID) error
}

type AuthService struct {
	log        logger.Log
	jwtManager *JWTManager
	authRepo   authRepo
	tokenRepo  tokenRepo
}

func NewAuthService(l logger.Log, manager *JWTManager, aRepo authRepo, tRepo tokenRepo) *AuthService {
	return &AuthService{
		log:        l,
		jwtManager: manager,
		authRepo:   aRepo,
		tokenRepo:  tRepo,
	}
}

// Register creates a new account. Self-registration may pick Student or
// Instructor; Admin accounts are provisioned through the user management API.
func (u *AuthService) Register(ctx context.Context, user models.User) (*models.User, error) {
	if len(user.Password) < 6 || len(user.Password) > 72 {
		return nil, app_errors.ErrIncorrectPassword
	}
	if user.Role != models.StudentRole && user.Role != models.InstructorRole {
		return nil, app_errors.ErrForbidden
	}

	hashed, err := hashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	return u.authRepo.CreateUser(ctx, user)
}

func (u *AuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	user, err := u.authRepo.UserByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if !checkPasswordHash(password, user.Password) {
		return "", "", app_errors.ErrIncorrectPassword
	}

	tokenPair, err := u.jwtManager.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return "", "", err
	}

	if err := u.tokenRepo.DeleteUserTokens(ctx, user.ID); err != nil {
		return "", "", err
	}
	if _, err := u.tokenRepo.Create(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		return "", "", err
	}

	return tokenPair.AccessToken.Raw, tokenPair.RefreshToken.Raw, nil
}

// RefreshTokens rotates the refresh token: the presented token must match a
// stored unexpired record, and every prior token of the user is invalidated.
func (u *AuthService) RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error) {
	curToken, err := u.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}
	if !u.jwtManager.TokenType(curToken, RefreshTokenType) {
		return nil, app_errors.ErrTokenNotFound
	}
	userIDStr, err := curToken.Claims.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	tokenRecord, err := u.tokenRepo.ByPrimaryKey(ctx, userID, curToken)
	if err != nil {
		return nil, err
	}
	if tokenRecord.ExpiresAt.Before(time.Now()) {
		return nil, app_errors.ErrTokenExpired
	}

	user, err := u.authRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tokenPair, err := u.jwtManager.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err := u.tokenRepo.DeleteUserTokens(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := u.tokenRepo.Create(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		return nil, err
	}
	return tokenPair, nil
}

func (u *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return u.tokenRepo.DeleteUserTokens(ctx, userID)
}

// Principal resolves an access token into the identity requests act as.
func (u *AuthService) Principal(ctx context.Context, token string) (models.Principal, error) {
	claims, err := u.jwtManager.AccessClaims(token)
	if err != nil {
		return models.Principal{}, err
	}
	return models.Principal{ID: claims.UserID, Role: claims.Role}, nil
}

func (u *AuthService) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return u.authRepo.UserByID(ctx, id)
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
