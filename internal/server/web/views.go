package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/session"
	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "edit", "login", "register", "dashboard"}

type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// pageData is what every template receives.
type pageData struct {
	Title          string
	Account        *models.User
	Flashes        []session.Flash
	Tasks          []*models.Task
	NumberOfTasks  int
	ShowIncomplete bool
	Task           *models.Task
	Email          string
}

// render executes a page inside the layout. Flashes queued so far,
// including ones added during this request, are consumed.
func (h *handlers) render(c *fiber.Ctx, page string, data pageData) error {
	t, ok := h.views.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	data.Flashes = session.From(c).PopFlashes()
	if data.Account == nil {
		data.Account = accountOf(c)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
