// Package pages renders the server-side HTML pages. Each page is a templ
// component that executes an embedded html/template inside the shared layout.
package pages

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/feedbackboard/internal/gate"
	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/web/form"
	"github.com/mcoot/feedbackboard/internal/web/templates/layout"
)

//go:embed html/*.html
var files embed.FS

var funcs = template.FuncMap{
	"profilePath": gate.ProfilePath,
}

var (
	homeTmpl     = parse("home.html")
	registerTmpl = parse("register.html")
	loginTmpl    = parse("login.html")
	userTmpl     = parse("user.html")
	feedbackTmpl = parse("feedback_form.html")
	secretTmpl   = parse("secret.html")
	errorTmpl    = parse("error.html")
)

func parse(page string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(funcs).ParseFS(files, "html/layout.html", "html/"+page))
}

func component(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, "layout.html", data)
	})
}

// HomeData is the data for the home page
type HomeData struct {
	layout.PageData
	Feedback []*model.Feedback
	Users    []*model.User
}

// Home lists recent feedback and users
func Home(data HomeData) templ.Component {
	return component(homeTmpl, data)
}

// RegisterData is the data for the registration page
type RegisterData struct {
	layout.PageData
	Form        form.Register
	FieldErrors form.FieldErrors
}

// Register renders the registration form
func Register(data RegisterData) templ.Component {
	data.Form.Password = ""
	return component(registerTmpl, data)
}

// LoginData is the data for the login page
type LoginData struct {
	layout.PageData
	Username    string
	FieldErrors form.FieldErrors
}

// Login renders the login form
func Login(data LoginData) templ.Component {
	return component(loginTmpl, data)
}

// UserData is the data for a profile page
type UserData struct {
	layout.PageData
	User    *model.User
	IsOwner bool
}

// User renders a profile and the user's feedback
func User(data UserData) templ.Component {
	return component(userTmpl, data)
}

// FeedbackFormData is the data for the add and edit feedback pages
type FeedbackFormData struct {
	layout.PageData
	Heading     string
	Action      string
	Submit      string
	Owner       string
	Form        form.Feedback
	FieldErrors form.FieldErrors
}

// FeedbackForm renders the add or edit feedback form
func FeedbackForm(data FeedbackFormData) templ.Component {
	return component(feedbackTmpl, data)
}

// SecretData is the data for the members-only page
type SecretData struct {
	layout.PageData
}

// Secret renders the members-only page
func Secret(data SecretData) templ.Component {
	return component(secretTmpl, data)
}

// ErrorData is the data for error pages
type ErrorData struct {
	layout.PageData
	Status  int
	Message string
}

// Error renders an error page such as 404 Not Found
func Error(data ErrorData) templ.Component {
	return component(errorTmpl, data)
}
