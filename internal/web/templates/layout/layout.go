package layout

import (
	"github.com/mcoot/feedbackboard/internal/web/flash"
)

// PageData holds data common to all pages
type PageData struct {
	Title string
	// CurrentUser is the logged-in username, empty when anonymous
	CurrentUser string
	// Flashes are shown once at the top of the page
	Flashes []flash.Message
}

// LoggedIn reports whether the page is rendered for an authenticated user
func (p PageData) LoggedIn() bool {
	return p.CurrentUser != ""
}
