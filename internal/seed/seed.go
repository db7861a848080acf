// Package seed fills a store with demo users and feedback.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/services/feedback"
)

// DemoPassword is the password of every seeded account
const DemoPassword = "password"

// unsafeUsernameChars matches what the registration form would refuse
var unsafeUsernameChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// maxAttempts bounds retries when a generated username is already taken
const maxAttempts = 5

// Result summarizes a seeding run
type Result struct {
	Users    []string
	Feedback int
}

// Seeder creates demo accounts through the regular services
type Seeder struct {
	authService     *auth.Service
	feedbackService *feedback.Service
	faker           *gofakeit.Faker
	logger          *slog.Logger
}

// New creates a Seeder. A fixed seed gives repeatable data.
func New(authService *auth.Service, feedbackService *feedback.Service, seed int64, logger *slog.Logger) *Seeder {
	return &Seeder{
		authService:     authService,
		feedbackService: feedbackService,
		faker:           gofakeit.New(seed),
		logger:          logger,
	}
}

// Run registers users accounts and posts perUser feedback entries for each
func (s *Seeder) Run(ctx context.Context, users, perUser int) (Result, error) {
	var res Result
	for range users {
		user, err := s.createUser(ctx)
		if err != nil {
			return res, err
		}
		res.Users = append(res.Users, user.Username)

		for range perUser {
			if _, err := s.feedbackService.Create(ctx, user.Username, s.title(), s.content()); err != nil {
				return res, fmt.Errorf("create feedback for %s: %w", user.Username, err)
			}
			res.Feedback++
		}
	}

	s.logger.Info("seed complete",
		slog.Int("users", len(res.Users)),
		slog.Int("feedback", res.Feedback),
	)
	return res, nil
}

func (s *Seeder) createUser(ctx context.Context) (*model.User, error) {
	for range maxAttempts {
		user, err := s.authService.Register(ctx, auth.RegisterParams{
			Username:  s.username(),
			Password:  DemoPassword,
			Email:     truncate(s.faker.Email(), 50),
			FirstName: truncate(s.faker.FirstName(), 30),
			LastName:  truncate(s.faker.LastName(), 30),
		})
		if errors.Is(err, model.ErrDuplicateUsername) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("register demo user: %w", err)
		}
		return user, nil
	}
	return nil, errors.New("could not generate a unique username")
}

func (s *Seeder) username() string {
	suffix := fmt.Sprintf("%d", s.faker.Number(100, 999))
	base := unsafeUsernameChars.ReplaceAllString(strings.ToLower(s.faker.Username()), "")
	return truncate(base, 20-len(suffix)) + suffix
}

func (s *Seeder) title() string {
	return truncate(strings.TrimSuffix(s.faker.Sentence(5), "."), 100)
}

func (s *Seeder) content() string {
	return s.faker.Paragraph(1, 3, 8, "\n")
}

func truncate(v string, n int) string {
	if len(v) <= n {
		return v
	}
	return v[:n]
}
