package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/feedbackboard/internal/dependencies/clock"
	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/storage"
)

// Errors
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooLong is returned for passwords longer than bcrypt accepts
	ErrPasswordTooLong = errors.New("password too long")
)

// RegisterParams holds the fields collected by the registration form
type RegisterParams struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// Config holds configuration for the auth service
type Config struct {
	// BcryptCost is the work factor used when hashing passwords
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service owns user accounts: registration, credential checks and deletion
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cost    int
	logger  *slog.Logger
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		cost:    cfg.BcryptCost,
		logger:  logger,
	}
}

// Register hashes the password and inserts a new user. Uniqueness is left to the
// store, so a concurrent registration of the same name yields model.ErrDuplicateUsername.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     params.Username,
		PasswordHash: string(hash),
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("username", user.Username))
	return user, nil
}

// Authenticate returns the user if the password matches. An unknown username
// and a wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// DeleteAccount removes the user and every feedback entry they own
func (s *Service) DeleteAccount(ctx context.Context, username string) error {
	if err := s.storage.DeleteUser(ctx, username); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.String("username", username))
	return nil
}

// SessionValid reports whether a session token for username issued at issuedAt
// still belongs to the live account of that name. The account may have been
// deleted since, or deleted and registered again by someone else; a token
// signed before the account was created is rejected. Token times have second
// precision.
func (s *Service) SessionValid(ctx context.Context, username string, issuedAt time.Time) (bool, error) {
	user, err := s.storage.LookupUser(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return !issuedAt.Before(user.CreatedAt.Truncate(time.Second)), nil
}

// GetUser loads a user together with their feedback
func (s *Service) GetUser(ctx context.Context, username string) (*model.User, error) {
	return s.storage.GetUser(ctx, username)
}

// ListUsers returns up to limit users ordered by username
func (s *Service) ListUsers(ctx context.Context, limit int) ([]*model.User, error) {
	return s.storage.ListUsers(ctx, limit)
}
