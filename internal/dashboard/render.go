package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"salesconvert.example/sales-convert/internal/analytics"
	"salesconvert.example/sales-convert/internal/models"
	"salesconvert.example/sales-convert/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"date":  func(t time.Time) string { return t.UTC().Format("2006-01-02") },
}

// pageData 所有页面共用的模板数据
type pageData struct {
	Page      session.Page
	Nav       []session.Page
	Flash     *session.Flash
	User      *models.User
	Records   []models.SalesRecord
	Summary   analytics.Summary
	Daily     []analytics.DailyRevenue
	Window    analytics.Window
	Windows   []analytics.Window
	Platforms []models.Platform
	Today     string
	Count     int64
}

// parseTemplates 每个页面一套模板：layout.html + 页面自己的 content
func parseTemplates() (map[session.Page]*template.Template, error) {
	out := make(map[session.Page]*template.Template, len(session.Pages))
	for _, p := range session.Pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+string(p)+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template for page %s: %w", p, err)
		}
		out[p] = t
	}
	return out, nil
}

// render 先渲染到缓冲区，模板出错时还能返回 500
func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	t, ok := h.templates[data.Page]
	if !ok {
		h.log.Error(r.Context(), "no template for page", "page", data.Page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.log.Error(r.Context(), "failed to render page", "page", data.Page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
