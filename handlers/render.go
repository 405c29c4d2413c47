package handlers

import (
	"bytes"
	"log"
	"net/http"

	"github.com/trickdeck/trickdeckbackend/crud"
	"github.com/trickdeck/trickdeckbackend/templates"
)

// Renderer pairs the template set with the session manager so every page
// carries the signed-in user and any pending flashes.
type Renderer struct {
	templates *templates.Set
	sessions  *SessionManager
}

func NewRenderer(set *templates.Set, sessions *SessionManager) *Renderer {
	return &Renderer{templates: set, sessions: sessions}
}

func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	page := templates.Page{
		Title:   title,
		User:    CurrentUser(r),
		Flashes: rn.sessions.PopFlashes(w, r),
		Data:    data,
	}

	// render to a buffer first so a template failure produces a clean 500
	// instead of a half-written page
	var buf bytes.Buffer
	if err := rn.templates.Render(&buf, name, page); err != nil {
		log.Printf("template render failed for %q: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("failed writing response for %q: %v", name, err)
	}
}

// Finish applies a crud outcome. It returns true when the response is
// complete (redirect or forbidden) and false when the caller should render.
func (rn *Renderer) Finish(w http.ResponseWriter, r *http.Request, outcome crud.Outcome) bool {
	switch outcome.Kind {
	case crud.KindRedirect:
		rn.sessions.AddFlashes(w, r, outcome.Flashes)
		http.Redirect(w, r, outcome.Location, http.StatusSeeOther)
		return true
	case crud.KindForbidden:
		http.Error(w, "Forbidden", http.StatusForbidden)
		return true
	default:
		return false
	}
}
