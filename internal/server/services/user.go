// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okolodev/credvault/internal/common"
	"github.com/okolodev/credvault/internal/server/auth"
	"github.com/okolodev/credvault/internal/server/config"
	"github.com/okolodev/credvault/internal/server/models"
	"github.com/okolodev/credvault/internal/server/repositories/repomanager"
)

// UserService provides authentication-related operations:
// - Register: create an account and mint a session token
// - Login: verify credentials and mint a session token
// - ResolveSubject: confirm a token subject still exists (gate lookup)
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	tokenSecret           []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server
// config. The signing secret is read once; config is not retained.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		tokenSecret:           []byte(cfg.TokenSecret),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new account and returns it with a fresh session token.
// Missing fields yield ErrorValidation; a duplicate email yields
// ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	user := &models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", common.ErrorAlreadyExists
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.generateToken(u.ID)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return u, token, nil
}

// Login verifies the credentials and returns the account with a fresh
// session token. Unknown email and wrong password are indistinguishable:
// both yield ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}

// ResolveSubject confirms the token subject still maps to an account.
// Tokens outlive account deletion (no revocation list), so the gate calls
// this on every request; a deleted account yields ErrUnknownSubject.
func (s *UserService) ResolveSubject(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownSubject
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// VerifyToken checks a presented token and returns its subject.
func (s *UserService) VerifyToken(tokenString string) (string, error) {
	return auth.GetUserIDFromToken(tokenString, s.tokenSecret)
}

func (s *UserService) generateToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.tokenSecret, s.tokenValidityDuration)
}
