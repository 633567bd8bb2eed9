package web

import (
	"net/http"
)

// page holds the fields every template's layout needs.
type page struct {
	Title    string
	Username string
	Notice   string
	Error    string
}

// newPage builds the layout data, picking up the logged-in username when a
// session is present.
func newPage(r *http.Request, title string) page {
	p := page{Title: title}
	if sess := SessionFromContext(r.Context()); sess != nil {
		p.Username = sess.Username
	}
	return p
}

// errorPage is the data for the generic error template.
type errorPage struct {
	page
	Heading string
	Message string
}

// renderError writes the generic error page.
func (h *ListingHandler) renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	h.render.Render(w, r, status, "error", errorPage{
		page:    newPage(r, heading),
		Heading: heading,
		Message: message,
	})
}
