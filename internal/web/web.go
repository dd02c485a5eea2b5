// Package web embeds the HTML templates and static assets of the application
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/pkg/helpers"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page and partial. Pages are addressed by their defined
// name, e.g. "students/index.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS,
		"templates/partials/*.html",
		"templates/auth/*.html",
		"templates/dashboard/*.html",
		"templates/students/*.html",
		"templates/pets/*.html",
		"templates/reports/*.html",
		"templates/errors/*.html",
	)
}

// Static serves the files under static/
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return http.FS(sub)
}

// FuncMap are the helpers available to every template
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate":     formatTime(helpers.DateLayout),
		"formatDateTime": formatTime(helpers.DateTimeLayout),
		"inputDate":      formatTime(helpers.InputDateLayout),
		"deref":          deref,
		"sexLabel":       models.SexLabel,
		"pageURL":        pageURL,
	}
}

func formatTime(layout string) func(v interface{}) string {
	return func(v interface{}) string {
		switch t := v.(type) {
		case time.Time:
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		case *time.Time:
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format(layout)
		}
		return ""
	}
}

// deref prints optional columns, nil as the empty string
func deref(v interface{}) string {
	switch p := v.(type) {
	case *string:
		if p != nil {
			return *p
		}
	case *int:
		if p != nil {
			return strconv.Itoa(*p)
		}
	case string:
		return p
	case int:
		return strconv.Itoa(p)
	}
	return ""
}

// pageURL builds the link of a list page keeping the search term
func pageURL(base, search string, page int) string {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	q.Set("page", strconv.Itoa(page))
	return base + "?" + q.Encode()
}
