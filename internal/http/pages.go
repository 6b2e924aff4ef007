package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/fairyhunter13/product-console/internal/model"
	"github.com/fairyhunter13/product-console/internal/obs"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// pages holds one template set per screen, each sharing the layout.
var pages = map[string]*template.Template{
	"login":    mustPage("login.tmpl"),
	"products": mustPage("products.tmpl"),
	"form":     mustPage("form.tmpl"),
}

func mustPage(name string) *template.Template {
	return template.Must(template.New(name).ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name))
}

type loginPage struct {
	Username string
	Error    string
}

type productsPage struct {
	Products []model.Product
	Error    string
}

type formPage struct {
	Form  model.ProductForm
	Error string
}

// render executes into a buffer first so a template failure never sends a half page.
func render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		obs.Logger.Error("template_render_failed", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
