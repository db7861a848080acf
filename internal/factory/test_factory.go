package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/feedbackboard/internal/dependencies/mocks"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/storage"
	"github.com/mcoot/feedbackboard/internal/storage/memory"
	"github.com/mcoot/feedbackboard/internal/testutil"
	"github.com/mcoot/feedbackboard/internal/web/flash"
)

// TestSessionSecret signs session tokens in tests
const TestSessionSecret = "test-session-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App backed by memory storage and a mocked clock
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a test App around an existing store
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	sessionCfg := session.DefaultConfig()
	sessionCfg.Secret = TestSessionSecret

	app, err := newWithDependencies(
		store,
		mockClock,
		flash.NewCookieStore(false),
		auth.Config{BcryptCost: bcrypt.MinCost},
		sessionCfg,
		testutil.NopLogger(),
	)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
