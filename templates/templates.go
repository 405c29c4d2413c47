package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/trickdeck/trickdeckbackend/crud"
	"github.com/trickdeck/trickdeckbackend/models"
)

//go:embed *.gohtml
var files embed.FS

// Page is the envelope handed to every template: the signed-in user (nil for
// visitors), pending flash messages, and the page-specific payload.
type Page struct {
	Title   string
	User    *models.User
	Flashes []crud.Flash
	Data    any
}

// Set holds one parsed template tree per page, each sharing the layout.
type Set struct {
	pages map[string]*template.Template
}

var pageNames = []string{
	"home",
	"figure_show",
	"figure_form",
	"image_form",
	"video_form",
	"login",
	"register",
	"forgot_password",
	"reset_password",
	"profile",
}

var funcs = template.FuncMap{
	"embedHTML": func(code string) template.HTML {
		// embed codes are validated against the iframe pattern before storage
		return template.HTML(code)
	},
	"formatUnix": func(ts *int64) string {
		if ts == nil {
			return ""
		}
		return time.Unix(*ts, 0).UTC().Format("2006-01-02 15:04")
	},
	"formatTime": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
}

// Load parses every page template against the shared layout.
func Load() (*Set, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(files, "layout.gohtml", name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Set{pages: pages}, nil
}

func (s *Set) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := s.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	if err := tmpl.ExecuteTemplate(w, "layout", page); err != nil {
		return fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return nil
}
