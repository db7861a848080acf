// Package form parses and validates the HTML forms posted to the web handlers.
package form

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to a user-facing message
type FieldErrors map[string]string

// Register is the account registration form
type Register struct {
	Username  string `form:"username" validate:"required,max=20,username"`
	Password  string `form:"password" validate:"required,maxbytes=72"`
	Email     string `form:"email" validate:"required,email,max=50"`
	FirstName string `form:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" validate:"required,max=30"`
}

// Login is the login form
type Login struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Feedback is the form used to add and edit feedback
type Feedback struct {
	Title   string `form:"title" validate:"required,max=100"`
	Content string `form:"content" validate:"required"`
}

// PasswordMaxBytes is the longest password bcrypt will hash
const PasswordMaxBytes = 72

// usernamePattern keeps usernames safe to use as a single URL path segment
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report errors under the HTML field name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	// max counts runes; maxbytes counts encoded bytes
	mustRegister(v, "maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			panic(fmt.Sprintf("maxbytes: bad limit %q", fl.Param()))
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// ParseRegister reads the registration form from r
func ParseRegister(r *http.Request) (Register, error) {
	if err := r.ParseForm(); err != nil {
		return Register{}, err
	}
	return Register{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Password:  r.PostFormValue("password"),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
	}, nil
}

// ParseLogin reads the login form from r
func ParseLogin(r *http.Request) (Login, error) {
	if err := r.ParseForm(); err != nil {
		return Login{}, err
	}
	return Login{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}, nil
}

// ParseFeedback reads the feedback form from r
func ParseFeedback(r *http.Request) (Feedback, error) {
	if err := r.ParseForm(); err != nil {
		return Feedback{}, err
	}
	return Feedback{
		Title:   strings.TrimSpace(r.PostFormValue("title")),
		Content: strings.TrimSpace(r.PostFormValue("content")),
	}, nil
}

// Validate checks a form struct and returns per-field messages.
// A nil result means the form is valid.
func Validate(f any) FieldErrors {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_form": "Invalid form data."}
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Must be at most %s bytes.", fe.Param())
	case "username":
		return "Use only letters, digits, hyphens and underscores."
	case "email":
		return "Must be a valid email address."
	default:
		return "Invalid value."
	}
}
