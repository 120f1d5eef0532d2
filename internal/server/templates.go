package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = mustParsePages()

// pageData is rendered by every page template.
type pageData struct {
	Title    string
	Message  string
	OK       bool
	Link     string
	LinkText string
	Names    []string
}

func mustParsePages() map[string]*template.Template {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}

	base := template.Must(template.New("base.html").ParseFS(templateFS, "templates/base.html"))

	sets := make(map[string]*template.Template)
	for _, file := range files {
		if file == "templates/base.html" {
			continue
		}
		set := template.Must(base.Clone())
		template.Must(set.ParseFS(templateFS, file))
		sets[path.Base(file)] = set
	}
	return sets
}

func renderPage(w http.ResponseWriter, status int, page string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pages[page].ExecuteTemplate(w, "base", data)
}
