package e2e_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/feedbackboard/internal/factory"
	"github.com/mcoot/feedbackboard/internal/gate"
	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/server"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/storage/sqlstore"
	"github.com/mcoot/feedbackboard/internal/testutil"
	"github.com/mcoot/feedbackboard/internal/web/flash"
)

// FlowSuite drives a real server over TCP with SQLite storage
type FlowSuite struct {
	suite.Suite
	flashStore string

	app     *factory.App
	srv     *server.Server
	baseURL string
	done    chan error
}

func TestFlowWithCookieFlash(t *testing.T) {
	suite.Run(t, &FlowSuite{flashStore: factory.FlashStoreCookie})
}

func TestFlowWithRedisFlash(t *testing.T) {
	suite.Run(t, &FlowSuite{flashStore: factory.FlashStoreRedis})
}

func (s *FlowSuite) SetupTest() {
	t := s.T()

	redisCfg := flash.DefaultRedisConfig()
	if s.flashStore == factory.FlashStoreRedis {
		mr := miniredis.RunT(t)
		redisCfg.URL = "redis://" + mr.Addr()
	}

	app, err := factory.New(context.Background(), factory.Config{
		Logger:      testutil.NopLogger(),
		StorageType: factory.StorageTypeSQLite,
		SQLConfig: sqlstore.Config{
			DSN: "file:" + filepath.Join(t.TempDir(), "e2e.db") + "?_foreign_keys=on",
		},
		AutoMigrate:    true,
		SessionConfig:  session.Config{Secret: "e2e-session-secret"},
		FlashStoreType: s.flashStore,
		RedisConfig:    redisCfg,
		AuthConfig:     auth.Config{BcryptCost: bcrypt.MinCost},
	})
	s.Require().NoError(err)
	s.app = app

	l, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.baseURL = "http://" + l.Addr().String()

	s.srv = server.New(app.Handler(""), server.DefaultConfig(), testutil.NopLogger())
	s.done = make(chan error, 1)
	go func() { s.done <- s.srv.Serve(l) }()
}

func (s *FlowSuite) TearDownTest() {
	s.Require().NoError(s.srv.Shutdown(context.Background()))
	s.Require().NoError(<-s.done)
	s.Require().NoError(s.app.Close())
}

// browser is an HTTP client with its own cookies that does not follow redirects
type browser struct {
	t       *testing.T
	baseURL string
	client  *http.Client
}

func (s *FlowSuite) newBrowser() *browser {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	return &browser{
		t:       s.T(),
		baseURL: s.baseURL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// page is a fetched response with its parsed body
type page struct {
	status   int
	location string
	doc      *goquery.Document
}

func (b *browser) do(method, path string, form url.Values) page {
	b.t.Helper()
	var req *http.Request
	var err error
	if form != nil {
		req, err = http.NewRequest(method, b.baseURL+path, strings.NewReader(form.Encode()))
		require.NoError(b.t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req, err = http.NewRequest(method, b.baseURL+path, nil)
		require.NoError(b.t, err)
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(b.t, err)
	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), doc: doc}
}

func (b *browser) get(path string) page {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) page {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, path, form)
}

func (b *browser) follow(p page) page {
	b.t.Helper()
	require.Equal(b.t, http.StatusSeeOther, p.status)
	return b.get(p.location)
}

func (b *browser) register(username string) page {
	return b.post("/register", url.Values{
		"username":   {username},
		"password":   {"pw-" + username},
		"email":      {username + "@example.com"},
		"first_name": {username},
		"last_name":  {"E2e"},
	})
}

func (s *FlowSuite) feedbackIDs(username string) []model.FeedbackID {
	user, err := s.app.AuthService.GetUser(context.Background(), username)
	s.Require().NoError(err)
	ids := make([]model.FeedbackID, 0, len(user.Feedback))
	for _, fb := range user.Feedback {
		ids = append(ids, fb.ID)
	}
	return ids
}

// Register, post, then try to edit anonymously: sent home and nothing changes
func (s *FlowSuite) TestAnonymousEditIsRejected() {
	alice := s.newBrowser()

	p := alice.register("alice")
	s.Equal("/users/alice", p.location)
	p = alice.follow(p)
	s.Contains(p.doc.Find(".flash-success").Text(), "Welcome, alice E2e!")

	p = alice.post("/users/alice/feedback/add", url.Values{"title": {"hello"}, "content": {"world"}})
	s.Equal("/users/alice", p.location)
	ids := s.feedbackIDs("alice")
	s.Require().Len(ids, 1)
	editPath := fmt.Sprintf("/feedback/%d/update", ids[0])

	anon := s.newBrowser()
	p = anon.get(editPath)
	s.Equal(http.StatusSeeOther, p.status)
	s.Equal("/", p.location)
	p = anon.follow(p)
	s.Equal(gate.MsgLoginRequired, strings.TrimSpace(p.doc.Find(".flash-danger").Text()))

	// a direct POST is refused as well
	p = anon.post(editPath, url.Values{"title": {"changed"}, "content": {"changed"}})
	s.Equal("/", p.location)

	fb, err := s.app.FeedbackService.Get(context.Background(), ids[0])
	s.Require().NoError(err)
	s.Equal("hello", fb.Title)
	s.Equal("world", fb.Content)
}

// Bob cannot delete Alice's feedback
func (s *FlowSuite) TestOtherUserCannotDelete() {
	alice := s.newBrowser()
	alice.follow(alice.register("alice"))
	alice.post("/users/alice/feedback/add", url.Values{"title": {"mine"}, "content": {"keep out"}})
	ids := s.feedbackIDs("alice")
	s.Require().Len(ids, 1)

	bob := s.newBrowser()
	bob.follow(bob.register("bob"))
	bob.follow(bob.get("/logout"))
	p := bob.post("/login", url.Values{"username": {"bob"}, "password": {"pw-bob"}})
	s.Equal("/users/bob", p.location)
	bob.follow(p)

	p = bob.post(fmt.Sprintf("/feedback/%d/delete", ids[0]), nil)
	s.Equal(http.StatusSeeOther, p.status)
	s.Equal("/users/bob", p.location)
	p = bob.follow(p)
	s.Equal(gate.MsgNotAuthorized, strings.TrimSpace(p.doc.Find(".flash-danger").Text()))

	s.Equal(ids, s.feedbackIDs("alice"))
}

// Deleting an account removes its feedback and ends the session
func (s *FlowSuite) TestDeleteAccountCascades() {
	alice := s.newBrowser()
	alice.follow(alice.register("alice"))
	for i := range 3 {
		alice.post("/users/alice/feedback/add", url.Values{"title": {fmt.Sprintf("t%d", i)}, "content": {"c"}})
	}

	p := alice.post("/users/alice/delete", nil)
	s.Equal("/", p.location)
	p = alice.follow(p)
	s.Contains(p.doc.Find(".flash-success").Text(), "Successfully deleted alice!")
	s.Zero(p.doc.Find("#feedback li.feedback").Length())

	// the browser is anonymous again
	p = alice.get("/secret")
	s.Equal(http.StatusSeeOther, p.status)

	entries, err := s.app.FeedbackService.ListRecent(context.Background(), 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *FlowSuite) TestUnknownPageIs404() {
	p := s.newBrowser().get("/missing")
	s.Equal(http.StatusNotFound, p.status)
	s.Equal("404", p.doc.Find(".error-status").Text())
}
