package factory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/storage/sqlstore"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) register(username string) *model.User {
	user, err := s.app.AuthService.Register(s.ctx, auth.RegisterParams{
		Username:  username,
		Password:  "password-" + username,
		Email:     username + "@example.com",
		FirstName: "First",
		LastName:  "Last",
	})
	s.Require().NoError(err)
	return user
}

// Test: an account's full lifecycle from registration to cascaded deletion
func (s *IntegrationSuite) TestAccountLifecycle() {
	s.register("alice")
	s.register("bob")

	first, err := s.app.FeedbackService.Create(s.ctx, "alice", "hello", "world")
	s.Require().NoError(err)
	_, err = s.app.FeedbackService.Create(s.ctx, "bob", "from bob", "hi")
	s.Require().NoError(err)

	user, err := s.app.AuthService.Authenticate(s.ctx, "alice", "password-alice")
	s.Require().NoError(err)
	s.Len(user.Feedback, 1)

	s.Require().NoError(s.app.AuthService.DeleteAccount(s.ctx, "alice"))

	_, err = s.app.FeedbackService.Get(s.ctx, first.ID)
	s.ErrorIs(err, model.ErrFeedbackNotFound)

	remaining, err := s.app.FeedbackService.ListRecent(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal("bob", remaining[0].Username)
}

// Test: session tokens follow the injected clock
func (s *IntegrationSuite) TestSessionExpiresWithClock() {
	s.register("alice")

	rr := httptest.NewRecorder()
	s.Require().NoError(s.app.Sessions.Issue(rr, "alice"))
	cookie := rr.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	s.Equal("alice", s.app.Sessions.Load(req).Username)

	s.app.MockClock.Advance(session.DefaultConfig().TTL + time.Minute)
	s.True(s.app.Sessions.Load(req).IsAnonymous())
}

// Test: the wired handler serves the home page and health check
func (s *IntegrationSuite) TestHandlerServes() {
	h := s.app.Handler("")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	s.Equal(http.StatusOK, rr.Code)
}

func TestNewWithSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, Config{
		StorageType:   StorageTypeSQLite,
		SQLConfig:     sqlstore.Config{DSN: "file:" + t.TempDir() + "/app.db?_foreign_keys=on"},
		AutoMigrate:   true,
		SessionConfig: session.Config{Secret: TestSessionSecret},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, err = app.AuthService.Register(ctx, auth.RegisterParams{
		Username: "alice", Password: "pw", Email: "a@example.com", FirstName: "A", LastName: "L",
	})
	require.NoError(t, err)

	users, err := app.AuthService.ListUsers(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestNewRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	secret := session.Config{Secret: TestSessionSecret}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown storage", Config{StorageType: "mongo", SessionConfig: secret}},
		{"sql without dsn", Config{StorageType: StorageTypePostgres, SessionConfig: secret}},
		{"unknown flash store", Config{FlashStoreType: "memcached", SessionConfig: secret}},
		{"missing session secret", Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, tt.cfg)
			assert.Error(t, err)
		})
	}
}
