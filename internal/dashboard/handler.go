package dashboard

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/schema"

	"salesconvert.example/sales-convert/internal/analytics"
	"salesconvert.example/sales-convert/internal/metrics"
	"salesconvert.example/sales-convert/internal/models"
	"salesconvert.example/sales-convert/internal/service"
	"salesconvert.example/sales-convert/internal/session"
	"salesconvert.example/sales-convert/pkg/logger"
)

const recentLimit = 10

var (
	anonymousNav     = []session.Page{session.PageLogin, session.PageRegister}
	authenticatedNav = []session.Page{session.PageDashboard, session.PageAddSales, session.PageAnalytics, session.PageProfile}
)

// Handler 持有 dashboard 所有页面和表单处理器的依赖
type Handler struct {
	auth      *service.AuthService
	sales     *service.SalesService
	sessions  *session.Manager
	metrics   *metrics.Metrics
	log       logger.Logger
	templates map[session.Page]*template.Template
	decoder   *schema.Decoder
	now       func() time.Time
}

func NewHandler(
	auth *service.AuthService,
	sales *service.SalesService,
	sessions *session.Manager,
	m *metrics.Metrics,
	log logger.Logger,
) (*Handler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Handler{
		auth:      auth,
		sales:     sales,
		sessions:  sessions,
		metrics:   m,
		log:       log,
		templates: templates,
		decoder:   decoder,
		now:       time.Now,
	}, nil
}

// loadSession 读取会话并把会话和用户信息放进日志 context
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, *http.Request, bool) {
	sess, err := h.sessions.Load(r)
	if err != nil {
		h.log.Error(r.Context(), "failed to load session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, r, false
	}
	ctx := logger.WithSessionID(r.Context(), sess.ID)
	if sess.Authenticated() {
		ctx = logger.WithUserID(ctx, sess.UserID)
	}
	return sess, r.WithContext(ctx), true
}

// saveAndRedirect 保存会话后 303 跳回首页，由首页根据页面标志渲染
func (h *Handler) saveAndRedirect(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.log.Error(r.Context(), "failed to save session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.LogIfError(r.Context(), h.log, err, msg)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// Index 根据会话中的页面标志分发到对应页面
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	sess, r, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	data := pageData{
		Nav:   anonymousNav,
		Flash: sess.PopFlash(),
	}

	if sess.Authenticated() {
		user, err := h.auth.GetUser(ctx, sess.UserID)
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			// 用户已不存在，退回匿名状态
			h.log.Warn(ctx, "session references missing user")
			sess.UserID = 0
			sess.Navigate(session.PageLogin)
		case err != nil:
			h.internalError(w, r, "failed to load user", err)
			return
		default:
			data.User = user
			data.Nav = authenticatedNav
		}
	}

	data.Page = sess.Current()
	if err := h.fillPage(r, sess, &data); err != nil {
		h.internalError(w, r, "failed to load page data", err)
		return
	}

	if err := h.sessions.Save(ctx, w, sess); err != nil {
		h.internalError(w, r, "failed to save session", err)
		return
	}
	h.render(w, r, data)
}

// fillPage 为当前页面加载数据
func (h *Handler) fillPage(r *http.Request, sess *session.Session, data *pageData) error {
	ctx := r.Context()
	now := h.now()

	switch data.Page {
	case session.PageDashboard:
		records, err := h.sales.GetUserSalesData(ctx, sess.UserID)
		if err != nil {
			return err
		}
		data.Summary = analytics.Summarize(records)
		data.Daily = analytics.Daily(analytics.Filter(records, analytics.Window30Days, now))
		if len(records) > recentLimit {
			records = records[:recentLimit]
		}
		data.Records = records

	case session.PageAddSales:
		data.Platforms = models.Platforms
		data.Today = models.DateOnly(now).Format("2006-01-02")

	case session.PageAnalytics:
		window, err := analytics.ParseWindow(r.URL.Query().Get("window"))
		if err != nil {
			window = analytics.WindowAll
		}
		records, err := h.sales.GetUserSalesData(ctx, sess.UserID)
		if err != nil {
			return err
		}
		data.Window = window
		data.Windows = analytics.Windows
		data.Summary = analytics.Summarize(analytics.Filter(records, window, now))

	case session.PageProfile:
		n, err := h.sales.CountUserSalesData(ctx, sess.UserID)
		if err != nil {
			return err
		}
		data.Count = n
	}
	return nil
}

type navForm struct {
	Page string `schema:"page"`
}

// Navigate 侧边栏按钮，直接覆盖会话中的页面标志
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	sess, r, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var form navForm
	if err := h.decodeForm(r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	page, err := session.ParsePage(form.Page)
	if err != nil {
		http.Error(w, "unknown page", http.StatusBadRequest)
		return
	}

	sess.Navigate(page)
	h.saveAndRedirect(w, r, sess)
}

type loginForm struct {
	Email    string `schema:"email"`
	Password string `schema:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sess, r, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var form loginForm
	if err := h.decodeForm(r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	userID, ok, err := h.auth.VerifyUser(ctx, form.Email, form.Password)
	if err != nil {
		h.internalError(w, r, "failed to verify user", err)
		return
	}
	h.metrics.ObserveLogin(ok)
	if !ok {
		h.log.Info(ctx, "login failed")
		sess.Navigate(session.PageLogin)
		sess.SetFlash("error", "Invalid email or password")
		h.saveAndRedirect(w, r, sess)
		return
	}

	if err := h.sessions.Rotate(ctx, sess); err != nil {
		h.internalError(w, r, "failed to rotate session", err)
		return
	}
	sess.Login(userID)
	sess.SetFlash("success", "Logged in successfully!")
	h.log.Info(logger.WithUserID(ctx, userID), "user logged in")
	h.saveAndRedirect(w, r, sess)
}

type registerForm struct {
	Name            string `schema:"name"`
	Email           string `schema:"email"`
	Password        string `schema:"password"`
	ConfirmPassword string `schema:"confirm_password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	sess, r, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var form registerForm
	if err := h.decodeForm(r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sess.Navigate(session.PageRegister)
	if form.Password != form.ConfirmPassword {
		h.metrics.ObserveRegistration("invalid")
		sess.SetFlash("error", "Passwords do not match")
		h.saveAndRedirect(w, r, sess)
		return
	}

	created, err := h.auth.CreateUser(r.Context(), form.Name, form.Email, form.Password)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		h.metrics.ObserveRegistration("invalid")
		sess.SetFlash("error", err.Error())
	case err != nil:
		h.internalError(w, r, "failed to create user", err)
		return
	case !created:
		h.metrics.ObserveRegistration("duplicate")
		sess.SetFlash("error", "Email already registered")
	default:
		h.metrics.ObserveRegistration("created")
		sess.Navigate(session.PageLogin)
		sess.SetFlash("success", "Registration successful! Please log in.")
	}
	h.saveAndRedirect(w, r, sess)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, r, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Destroy(r.Context(), w, sess); err != nil {
		h.internalError(w, r, "failed to destroy session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type salesForm struct {
	Date     string  `schema:"date"`
	Revenue  float64 `schema:"revenue"`
	Platform string  `schema:"platform"`
	Campaign string  `schema:"campaign"`
}

// AddSales 录入一条销售记录，结果通过 flash 显示在 add_sales 页面
func (h *Handler) AddSales(w http.ResponseWriter, r *http.Request) {
	sess, r, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !sess.Authenticated() {
		sess.Navigate(session.PageLogin)
		sess.SetFlash("error", "Please log in first")
		h.saveAndRedirect(w, r, sess)
		return
	}
	sess.Navigate(session.PageAddSales)

	var form salesForm
	if err := h.decodeForm(r, &form); err != nil {
		sess.SetFlash("error", "Revenue must be a number")
		h.saveAndRedirect(w, r, sess)
		return
	}
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		sess.SetFlash("error", "Date must be in YYYY-MM-DD format")
		h.saveAndRedirect(w, r, sess)
		return
	}

	err = h.sales.AddSalesData(r.Context(), sess.UserID, date, form.Revenue, models.Platform(form.Platform), form.Campaign)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		sess.SetFlash("error", err.Error())
	case err != nil:
		h.internalError(w, r, "failed to add sales data", err)
		return
	default:
		h.metrics.ObserveSalesRecord()
		sess.SetFlash("success", "Sales data added successfully!")
	}
	h.saveAndRedirect(w, r, sess)
}

type analyticsResponse struct {
	Window   analytics.Window         `json:"window"`
	Boundary *time.Time               `json:"boundary,omitempty"`
	Summary  analytics.Summary        `json:"summary"`
	Daily    []analytics.DailyRevenue `json:"daily"`
}

// AnalyticsAPI 返回当前用户指定窗口的汇总数据，供前端画图
func (h *Handler) AnalyticsAPI(w http.ResponseWriter, r *http.Request) {
	sess, r, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !sess.Authenticated() {
		writeJSONError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	window, err := analytics.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.sales.GetUserSalesData(r.Context(), sess.UserID)
	if err != nil {
		h.log.Error(r.Context(), "failed to load sales data", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	now := h.now()
	filtered := analytics.Filter(records, window, now)
	resp := analyticsResponse{
		Window:  window,
		Summary: analytics.Summarize(filtered),
		Daily:   analytics.Daily(filtered),
	}
	if b := window.Boundary(now); !b.IsZero() {
		resp.Boundary = &b
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error(r.Context(), "failed to encode analytics response", "error", err)
	}
}

// ExportCSV 下载当前用户的全部销售记录
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sess, r, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !sess.Authenticated() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales_data.csv"`)
	if err := h.sales.ExportCSV(r.Context(), sess.UserID, w); err != nil {
		// 头部可能已经写出，只记录日志
		h.log.Error(r.Context(), "failed to export sales data", "error", err)
	}
}

func (h *Handler) decodeForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	return h.decoder.Decode(dst, r.PostForm)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
