// Package auth implements account registration, login, and the JWT
// access/refresh token lifecycle.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/corville/notekeep/internal/apperr"
	"github.com/corville/notekeep/internal/store"
)

// Categories seeded for every new account.
var defaultCategories = []store.CategorySeed{
	{Name: "Random Thoughts", Color: "#EF9C66"},
	{Name: "School", Color: "#FCDC94"},
	{Name: "Personal", Color: "#C8CFA0"},
}

// TokenPair is an access/refresh token set returned by register, login,
// and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type accessClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Service issues, validates, rotates, and revokes tokens.
//
// Access tokens are stateless: once issued they are accepted until natural
// expiry and cannot be force-expired. Logout only revokes the refresh
// token, so the access TTL bounds how long a logged-out session lingers.
type Service struct {
	db         *store.DB
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates an auth service backed by the given store.
func NewService(db *store.DB, secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{db: db, secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Register creates an account with a bcrypt-hashed password, seeds the
// default categories, and returns the profile with a fresh token pair.
func (s *Service) Register(ctx context.Context, email, password, name string) (*store.User, *TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.db.CreateUserWithCategories(ctx, email, string(hash), name, defaultCategories)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies the password and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, *TokenPair, error) {
	user, err := s.db.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil, apperr.ErrBadCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, apperr.ErrBadCredentials
	}
	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A token that is expired, malformed, already rotated out,
// or blacklisted fails with apperr.ErrInvalidToken.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, jti, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.db.ConsumeRefreshToken(ctx, jti); err != nil {
		return nil, err
	}
	return s.issuePair(ctx, userID)
}

// Logout revokes a refresh token without reissuing. Already-issued access
// tokens remain valid until they expire.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	_, jti, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.db.ConsumeRefreshToken(ctx, jti)
}

// Authenticate validates an access token and returns the user id it was
// issued for.
func (s *Service) Authenticate(accessToken string) (int64, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(accessToken, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.UserID == 0 {
		return 0, apperr.ErrInvalidToken
	}
	return claims.UserID, nil
}

// User returns the profile for an authenticated user id.
func (s *Service) User(ctx context.Context, id int64) (*store.User, error) {
	return s.db.UserByID(ctx, id)
}

func (s *Service) keyFunc(*jwt.Token) (any, error) {
	return s.secret, nil
}

func (s *Service) issuePair(ctx context.Context, userID int64) (*TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	accessStr, err := access.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign access token: %w", err)
	}

	jti := uuid.NewString()
	refreshExp := now.Add(s.refreshTTL)
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        jti,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(refreshExp),
	})
	refreshStr, err := refresh.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign refresh token: %w", err)
	}
	if err := s.db.InsertRefreshToken(ctx, jti, userID, refreshExp); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessStr, RefreshToken: refreshStr}, nil
}

func (s *Service) parseRefresh(tokenStr string) (userID int64, jti string, err error) {
	var claims jwt.RegisteredClaims
	token, parseErr := jwt.ParseWithClaims(tokenStr, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if parseErr != nil || !token.Valid || claims.ID == "" {
		return 0, "", apperr.ErrInvalidToken
	}
	userID, convErr := strconv.ParseInt(claims.Subject, 10, 64)
	if convErr != nil || userID == 0 {
		return 0, "", apperr.ErrInvalidToken
	}
	return userID, claims.ID, nil
}
