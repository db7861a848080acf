package seed

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/feedbackboard/internal/dependencies/mocks"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/services/feedback"
	"github.com/mcoot/feedbackboard/internal/storage/memory"
	"github.com/mcoot/feedbackboard/internal/testutil"
)

func newSeeder(t *testing.T) (*Seeder, *auth.Service, *feedback.Service) {
	t.Helper()
	store := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	authService := auth.New(store, clk, auth.Config{BcryptCost: bcrypt.MinCost}, testutil.NopLogger())
	feedbackService := feedback.New(store, clk, testutil.NopLogger())
	return New(authService, feedbackService, 42, testutil.NopLogger()), authService, feedbackService
}

func TestRunCreatesUsersAndFeedback(t *testing.T) {
	ctx := context.Background()
	seeder, authService, feedbackService := newSeeder(t)

	res, err := seeder.Run(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	assert.Equal(t, 6, res.Feedback)

	for _, username := range res.Users {
		assert.LessOrEqual(t, len(username), 20)
		assert.Regexp(t, regexp.MustCompile(`^[a-z0-9_-]+$`), username)

		user, err := authService.Authenticate(ctx, username, DemoPassword)
		require.NoError(t, err)
		assert.Len(t, user.Feedback, 2)
		for _, fb := range user.Feedback {
			assert.NotEmpty(t, fb.Title)
			assert.LessOrEqual(t, len(fb.Title), 100)
		}
	}

	recent, err := feedbackService.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 6)
}

func TestRunWithNothingToDo(t *testing.T) {
	seeder, _, _ := newSeeder(t)

	res, err := seeder.Run(context.Background(), 0, 5)
	require.NoError(t, err)
	assert.Empty(t, res.Users)
	assert.Zero(t, res.Feedback)
}
