package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/feedbackboard/internal/factory"
	"github.com/mcoot/feedbackboard/internal/model"
)

// webTestServer provides a test server for web interface testing.
// Each webTestServer is one browser; use asNewBrowser for a second user.
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()

	return &webTestServer{
		t:       t,
		handler: app.Handler(""), // No static files in tests
		app:     app,
		cookies: newCookieJar(),
	}
}

// asNewBrowser returns a client for the same server with an empty cookie jar
func (ts *webTestServer) asNewBrowser() *webTestServer {
	return &webTestServer{
		t:       ts.t,
		handler: ts.handler,
		app:     ts.app,
		cookies: newCookieJar(),
	}
}

// cloneBrowser returns a client holding a copy of this browser's cookies,
// like the same account left logged in on a second device
func (ts *webTestServer) cloneBrowser() *webTestServer {
	jar := newCookieJar()
	for name, c := range ts.cookies.cookies {
		copied := *c
		jar.cookies[name] = &copied
	}
	return &webTestServer{
		t:       ts.t,
		handler: ts.handler,
		app:     ts.app,
		cookies: jar,
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return ts.request(http.MethodPost, path, form)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies["session"]
	return ok
}

// Helper functions for common test operations

func registerForm(username string) url.Values {
	return url.Values{
		"username":   {username},
		"password":   {"secret-" + username},
		"email":      {username + "@example.com"},
		"first_name": {strings.ToUpper(username[:1]) + username[1:]},
		"last_name":  {"Tester"},
	}
}

// register registers a user through the form, leaving the browser logged in
func (ts *webTestServer) register(username string) {
	ts.t.Helper()
	rr := ts.post("/register", registerForm(username))
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after registration")
	require.True(ts.t, ts.cookies.hasSession(), "Expected session cookie to be set")
	// show the greeting so it does not leak into later assertions
	ts.followRedirect(rr)
}

// login logs an existing user in through the form
func (ts *webTestServer) login(username string) {
	ts.t.Helper()
	rr := ts.post("/login", url.Values{"username": {username}, "password": {"secret-" + username}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after login")
	ts.followRedirect(rr)
}

// createFeedback posts feedback as the logged-in owner and returns the stored entry
func (ts *webTestServer) createFeedback(owner, title, content string) *model.Feedback {
	ts.t.Helper()
	rr := ts.post("/users/"+owner+"/feedback/add", url.Values{"title": {title}, "content": {content}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after adding feedback")
	ts.followRedirect(rr)

	user, err := ts.app.AuthService.GetUser(ts.t.Context(), owner)
	require.NoError(ts.t, err)
	require.NotEmpty(ts.t, user.Feedback)
	fb := user.Feedback[len(user.Feedback)-1]
	return &fb
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}

// assertFlash asserts that a flash message of the category contains the text
func assertFlash(t *testing.T, doc *goquery.Document, category, text string) {
	t.Helper()
	assertContainsText(t, doc, ".flash.flash-"+category, text)
}
