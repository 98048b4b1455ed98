package main

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"accueil",
	"wiki",
	"connexion",
	"inscription",
	"creer_article",
	"mon_compte",
	"shop",
	"ajouter_article_shop",
	"gestion_utilisateurs",
	"modifier_utilisateur",
	"gerer_comptes_admin",
	"gerer_compte_detail",
	"gestion_gemmes",
	"gerer_gemmes_detail",
}

// ArticleView is an article ready for the news feed: author resolved by
// name and grade (placeholder when the author was deleted) and content
// truncated for display.
type ArticleView struct {
	Titre           string
	Contenu         string
	NomAuteur       string
	GradeAuteur     string
	DatePublication string
}

// pageData is the payload handed to the view layer. Only the fields a
// given page uses are populated.
type pageData struct {
	Title    string
	PageID   string
	Session  *Session
	Notices  []Notice
	Articles []ArticleView
	Users    []User
	User     *User
	Items    []ShopItem
}

type Views struct {
	pages map[string]*template.Template
}

func NewViews() (*Views, error) {
	funcs := template.FuncMap{
		"lower": strings.ToLower,
		"datePart": func(stamp *string) string {
			if stamp == nil {
				return ""
			}
			if parts := strings.SplitN(*stamp, " ", 2); len(parts) > 0 {
				return parts[0]
			}
			return ""
		},
		"timePart": func(stamp *string) string {
			if stamp == nil {
				return "00:00:00"
			}
			if parts := strings.SplitN(*stamp, " ", 2); len(parts) == 2 {
				return parts[1]
			}
			return "00:00:00"
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Views{pages: pages}, nil
}

func (v *Views) Render(w http.ResponseWriter, page string, data pageData) error {
	t, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.ExecuteTemplate(w, "layout.html", data)
}

// render fills in the caller session and pending flash notices, then
// hands the page off to the view layer.
func (app *App) render(w http.ResponseWriter, r *http.Request, page string, data pageData) {
	data.PageID = page
	data.Session = app.sessions.ReadSession(r)
	data.Notices = app.sessions.ConsumeFlashes(w, r)
	if err := app.views.Render(w, page, data); err != nil {
		app.log.Error().Str("page", page).Err(err).Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
