package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/web/flash"
	"github.com/mcoot/feedbackboard/internal/web/form"
	"github.com/mcoot/feedbackboard/internal/web/templates/layout"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestLayoutNavForAnonymousAndLoggedIn(t *testing.T) {
	anon := render(t, Secret(SecretData{PageData: layout.PageData{Title: "Secret"}}))
	assert.Equal(t, 1, anon.Find("nav a[href='/login']").Length())
	assert.Equal(t, 0, anon.Find("nav a[href='/logout']").Length())

	in := render(t, Secret(SecretData{PageData: layout.PageData{Title: "Secret", CurrentUser: "alice"}}))
	assert.Equal(t, 1, in.Find("nav a[href='/logout']").Length())
	assert.Contains(t, in.Find("nav").Text(), "alice")
}

func TestLayoutRendersFlashes(t *testing.T) {
	doc := render(t, Secret(SecretData{PageData: layout.PageData{
		Flashes: []flash.Message{{Category: flash.Success, Text: "You made it!"}, {Category: flash.Danger, Text: "<b>nope</b>"}},
	}}))

	assert.Equal(t, "You made it!", doc.Find(".flash-success").Text())
	// message text is escaped, never interpreted as markup
	assert.Equal(t, "<b>nope</b>", doc.Find(".flash-danger").Text())
	assert.Equal(t, 0, doc.Find(".flash-danger b").Length())
}

func TestHomeListsFeedbackAndUsers(t *testing.T) {
	doc := render(t, Home(HomeData{
		Feedback: []*model.Feedback{{ID: 1, Title: "Nice", Content: "Good stuff", Username: "alice"}},
		Users:    []*model.User{{Username: "alice"}, {Username: "bob"}},
	}))

	assert.Equal(t, 1, doc.Find("#feedback li.feedback").Length())
	assert.Equal(t, 2, doc.Find("#users li.user").Length())
	assert.Equal(t, 1, doc.Find("a[href='/users/bob']").Length())
}

func TestHomeEmpty(t *testing.T) {
	doc := render(t, Home(HomeData{}))
	assert.Equal(t, 2, doc.Find("p.empty").Length())
}

func TestRegisterNeverEchoesPassword(t *testing.T) {
	doc := render(t, Register(RegisterData{
		Form:        form.Register{Username: "alice", Password: "s3cret"},
		FieldErrors: form.FieldErrors{"username": "Username already taken"},
	}))

	val, _ := doc.Find("input[name='username']").Attr("value")
	assert.Equal(t, "alice", val)
	pw, _ := doc.Find("input[name='password']").Attr("value")
	assert.Empty(t, pw)
	assert.Equal(t, "Username already taken", doc.Find(".field-error[data-field='username']").Text())
}

func TestUserOwnerControls(t *testing.T) {
	user := &model.User{Username: "alice", FirstName: "Alice", LastName: "Smith",
		Feedback: []model.Feedback{{ID: 3, Title: "t", Content: "c", Username: "alice"}}}

	owner := render(t, User(UserData{User: user, IsOwner: true}))
	assert.Equal(t, 1, owner.Find("form[action='/feedback/3/delete']").Length())
	assert.Equal(t, 1, owner.Find("form[action='/users/alice/delete']").Length())
	assert.Equal(t, "Alice Smith", owner.Find(".full-name").Text())

	visitor := render(t, User(UserData{User: user, IsOwner: false}))
	assert.Equal(t, 0, visitor.Find("form.delete-feedback").Length())
	assert.Equal(t, 0, visitor.Find("form.delete-user").Length())
}

func TestFeedbackFormAndError(t *testing.T) {
	doc := render(t, FeedbackForm(FeedbackFormData{
		Heading: "Edit feedback",
		Action:  "/feedback/7/update",
		Submit:  "Save",
		Owner:   "alice",
		Form:    form.Feedback{Title: "Old", Content: "Body"},
	}))
	assert.Equal(t, 1, doc.Find("form[action='/feedback/7/update']").Length())
	assert.Equal(t, "Body", doc.Find("textarea[name='content']").Text())

	errDoc := render(t, Error(ErrorData{Status: 404, Message: "Page not found"}))
	assert.Equal(t, "404", errDoc.Find(".error-status").Text())
}
