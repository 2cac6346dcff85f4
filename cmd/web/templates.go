package main

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/justinas/nosurf"
	"github.com/michaelgov-ctrl/form-lab/internal/forms"
	"github.com/michaelgov-ctrl/form-lab/internal/github"
	"github.com/michaelgov-ctrl/form-lab/internal/models"
	"github.com/michaelgov-ctrl/form-lab/ui"
)

type formView struct {
	Schema forms.Schema
	Values forms.Values
	Errors forms.Errors
	Valid  bool
	Mode   string
}

type navLink struct {
	Path  string
	Title string
}

type templateData struct {
	CurrentYear int
	CSRFToken   string
	Flash       string
	Nav         []navLink
	Form        *formView
	GitHubUser  string
	Repos       []github.Repository
	Submissions []models.Submission
}

func (app *application) newTemplateData(r *http.Request) templateData {
	td := templateData{
		CurrentYear: time.Now().Year(),
		CSRFToken:   nosurf.Token(r),
		Flash:       app.sessionManager.PopString(r.Context(), "flash"),
	}

	for name, schema := range app.schemas {
		td.Nav = append(td.Nav, navLink{Path: "/" + name, Title: schema.Title})
	}
	sort.Slice(td.Nav, func(i, j int) bool {
		return td.Nav[i].Path < td.Nav[j].Path
	})

	return td
}

func newFormView(c *forms.Controller) *formView {
	return &formView{
		Schema: c.Schema(),
		Values: c.RedactedValues(),
		Errors: c.Errors(),
		Valid:  c.Valid(),
		Mode:   c.Mode().String(),
	}
}

func humanDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format("02 Jan 2006 at 15:04")
}

// dict builds a map from key/value pairs so partials can take several arguments.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}

	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}

	return m, nil
}

var functions = template.FuncMap{
	"humanDate": humanDate,
	"dict":      dict,
}

func newTemplateCache() (map[string]*template.Template, error) {
	var cache = make(map[string]*template.Template)

	pages, err := fs.Glob(ui.Files, "html/pages/*.html")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		patterns := []string{
			"html/base.tmpl.html",
			"html/partials/*.html",
			page,
		}

		ts, err := template.New(name).Funcs(functions).ParseFS(ui.Files, patterns...)
		if err != nil {
			return nil, err
		}

		cache[name] = ts
	}

	return cache, nil
}
