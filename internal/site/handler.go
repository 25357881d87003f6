package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"salesconvert.example/sales-convert/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.0f", v) },
	"percent": func(v, total float64) int {
		if total <= 0 {
			return 0
		}
		return int(v / total * 100)
	},
}

type contactForm struct {
	Name    string `schema:"name" validate:"required"`
	Email   string `schema:"email" validate:"required,email"`
	Message string `schema:"message" validate:"required"`
}

type pageData struct {
	Page
	Nav         []Page
	Services    []Service
	CaseStudies []CaseStudy
	Articles    []string
	Analytics   []PlatformAnalytics
	MaxRevenue  float64
	Form        contactForm
	Warning     string
}

// Handler 营销站点，页面内容都是固定的
type Handler struct {
	log       logger.Logger
	templates map[string]*template.Template
	decoder   *schema.Decoder
	validate  *validator.Validate
}

func NewHandler(log logger.Logger) (*Handler, error) {
	templates := make(map[string]*template.Template, len(Pages))
	for _, p := range Pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+p.Name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template for page %s: %w", p.Name, err)
		}
		templates[p.Name] = t
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Handler{
		log:       log,
		templates: templates,
		decoder:   decoder,
		validate:  validator.New(),
	}, nil
}

func (h *Handler) newPageData(p Page) pageData {
	return pageData{Page: p, Nav: Pages}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.newPageData(PageHome))
}

func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(PageServices)
	data.Services = services
	h.render(w, r, http.StatusOK, data)
}

func (h *Handler) CaseStudies(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(PageCaseStudies)
	data.CaseStudies = caseStudies
	h.render(w, r, http.StatusOK, data)
}

func (h *Handler) Blog(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(PageBlog)
	data.Articles = articles
	h.render(w, r, http.StatusOK, data)
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(PageAnalytics)
	data.Analytics = mockAnalytics
	data.MaxRevenue = maxRevenue(mockAnalytics)
	h.render(w, r, http.StatusOK, data)
}

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.newPageData(PageContact))
}

// SubmitContact 不保存提交内容，只记录日志后跳回首页
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var form contactForm
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := h.decoder.Decode(&form, r.PostForm); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Message = strings.TrimSpace(form.Message)

	if err := h.validate.Struct(form); err != nil {
		data := h.newPageData(PageContact)
		data.Form = form
		data.Warning = "Please fill out all fields with a valid email address."
		h.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	// 姓名、邮箱和正文都不落日志
	h.log.Info(r.Context(), "contact form submitted", "message_length", len(form.Message))
	http.Redirect(w, r, PageHome.Path, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, code int, data pageData) {
	t, ok := h.templates[data.Name]
	if !ok {
		h.log.Error(r.Context(), "no template for page", "page", data.Name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.log.Error(r.Context(), "failed to render page", "page", data.Name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
