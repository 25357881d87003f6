package site

import (
	"net/http"

	"github.com/gorilla/mux"

	"salesconvert.example/sales-convert/internal/health"
	"salesconvert.example/sales-convert/internal/metrics"
	"salesconvert.example/sales-convert/pkg/logger"
)

func NewRouter(h *Handler, hh *health.HealthHandler, m *metrics.Metrics, log logger.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(logger.Middleware(log))
	r.Use(m.Middleware)

	r.HandleFunc(PageHome.Path, h.Home).Methods(http.MethodGet)
	r.HandleFunc(PageServices.Path, h.Services).Methods(http.MethodGet)
	r.HandleFunc(PageCaseStudies.Path, h.CaseStudies).Methods(http.MethodGet)
	r.HandleFunc(PageBlog.Path, h.Blog).Methods(http.MethodGet)
	r.HandleFunc(PageAnalytics.Path, h.Analytics).Methods(http.MethodGet)
	r.HandleFunc(PageContact.Path, h.Contact).Methods(http.MethodGet)
	r.HandleFunc(PageContact.Path, h.SubmitContact).Methods(http.MethodPost)

	r.HandleFunc("/healthz", hh.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	return r
}
