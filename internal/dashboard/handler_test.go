package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"salesconvert.example/sales-convert/internal/cache"
	"salesconvert.example/sales-convert/internal/health"
	"salesconvert.example/sales-convert/internal/metrics"
	"salesconvert.example/sales-convert/internal/ratelimit"
	"salesconvert.example/sales-convert/internal/repository"
	"salesconvert.example/sales-convert/internal/service"
	"salesconvert.example/sales-convert/internal/session"
	"salesconvert.example/sales-convert/internal/testutil"
	"salesconvert.example/sales-convert/pkg/logger"
)

var fixedNow = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

type testApp struct {
	server *httptest.Server
}

func newTestApp(t *testing.T, limiter ratelimit.Limiter) *testApp {
	t.Helper()
	log := logger.NewNop()
	db := testutil.NewDB(t)
	users := repository.NewGormUserRepository(db)
	sales := repository.NewGormSalesRepository(db)

	store := cache.NewMemoryCache()
	t.Cleanup(func() { store.Close() })
	sessions, err := session.NewManager(store, "test-secret", "sid", time.Hour, false)
	require.NoError(t, err)

	m := metrics.New("dashboard-test")
	h, err := NewHandler(
		service.NewAuthService(users, bcrypt.MinCost, log),
		service.NewSalesService(sales, users, log),
		sessions, m, log,
	)
	require.NoError(t, err)
	h.now = func() time.Time { return fixedNow }

	router := NewRouter(RouterOptions{
		Handler:     h,
		Health:      health.NewHealthHandler("dashboard", nil, log),
		Metrics:     m,
		AuthLimiter: limiter,
		Log:         log,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testApp{server: srv}
}

// browser 带 cookie 的客户端，POST 后自动跟随 303 跳转
type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func (a *testApp) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, client: &http.Client{Jar: jar}, base: a.server.URL}
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return readBody(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return readBody(b.t, resp)
}

func (b *browser) nav(page session.Page) string {
	b.t.Helper()
	code, body := b.post("/nav", url.Values{"page": {string(page)}})
	require.Equal(b.t, http.StatusOK, code)
	return body
}

func (b *browser) register(name, email, password string) string {
	b.t.Helper()
	_, body := b.post("/register", url.Values{
		"name": {name}, "email": {email}, "password": {password}, "confirm_password": {password},
	})
	return body
}

func (b *browser) login(email, password string) string {
	b.t.Helper()
	_, body := b.post("/login", url.Values{"email": {email}, "password": {password}})
	return body
}

func (b *browser) addSale(date, revenue, platform, campaign string) string {
	b.t.Helper()
	_, body := b.post("/sales", url.Values{
		"date": {date}, "revenue": {revenue}, "platform": {platform}, "campaign": {campaign},
	})
	return body
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func heading(p session.Page) string {
	return "<h1>" + p.Title() + "</h1>"
}

func TestInitialPageIsLogin(t *testing.T) {
	b := newTestApp(t, nil).browser(t)
	code, body := b.get("/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, heading(session.PageLogin))
}

func TestAnonymousCannotReachProtectedPages(t *testing.T) {
	b := newTestApp(t, nil).browser(t)
	for _, p := range []session.Page{session.PageDashboard, session.PageAddSales, session.PageAnalytics, session.PageProfile} {
		assert.Contains(t, b.nav(p), heading(session.PageLogin), "page %s", p)
	}
	assert.Contains(t, b.nav(session.PageRegister), heading(session.PageRegister))
}

func TestNavigateUnknownPage(t *testing.T) {
	b := newTestApp(t, nil).browser(t)
	code, _ := b.post("/nav", url.Values{"page": {"admin"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	b := newTestApp(t, nil).browser(t)

	body := b.register("Ann", "ann@example.com", "secret1")
	assert.Contains(t, body, heading(session.PageLogin))
	assert.Contains(t, body, "Registration successful! Please log in.")

	body = b.register("Ann", "ann@example.com", "secret1")
	assert.Contains(t, body, heading(session.PageRegister))
	assert.Contains(t, body, "Email already registered")

	_, body = b.post("/register", url.Values{
		"name": {"Bob"}, "email": {"bob@example.com"}, "password": {"secret1"}, "confirm_password": {"other1"},
	})
	assert.Contains(t, body, "Passwords do not match")

	// 40 个字符、80 字节，超过 bcrypt 的字节上限
	code, body := b.post("/register", url.Values{
		"name": {"Cid"}, "email": {"cid@example.com"},
		"password": {strings.Repeat("é", 40)}, "confirm_password": {strings.Repeat("é", 40)},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, heading(session.PageRegister))
	assert.Contains(t, body, "password must be at most 72 bytes")

	body = b.login("ann@example.com", "wrong-password")
	assert.Contains(t, body, heading(session.PageLogin))
	assert.Contains(t, body, "Invalid email or password")

	body = b.login("ann@example.com", "secret1")
	assert.Contains(t, body, heading(session.PageDashboard))
	assert.Contains(t, body, "Logged in successfully!")
	assert.Contains(t, body, "Signed in as <strong>Ann</strong>")
	assert.Contains(t, body, "No sales data yet")

	// flash 只显示一次
	_, body = b.get("/")
	assert.NotContains(t, body, "Logged in successfully!")

	// 已登录时 login 页面回到 dashboard
	assert.Contains(t, b.nav(session.PageLogin), heading(session.PageDashboard))

	_, body = b.post("/logout", nil)
	assert.Contains(t, body, heading(session.PageLogin))
}

func TestAddSalesAndAnalytics(t *testing.T) {
	app := newTestApp(t, nil)
	b := app.browser(t)
	b.register("Ann", "ann@example.com", "secret1")
	b.login("ann@example.com", "secret1")

	body := b.nav(session.PageAddSales)
	assert.Contains(t, body, heading(session.PageAddSales))
	assert.Contains(t, body, `value="2024-03-31"`)

	body = b.addSale("2024-03-30", "100", "Facebook", "Spring")
	assert.Contains(t, body, "Sales data added successfully!")
	assert.Contains(t, body, heading(session.PageAddSales))
	b.addSale("2024-03-01", "250.50", "Instagram", "Launch")
	b.addSale("2023-11-01", "49.50", "Facebook", "Spring")

	body = b.addSale("2024-03-30", "-5", "Facebook", "Spring")
	assert.Contains(t, body, "revenue must be at least 0")
	body = b.addSale("2024-03-30", "5", "MySpace", "Spring")
	assert.Contains(t, body, "platform must be one of")
	body = b.addSale("30/03/2024", "5", "Facebook", "Spring")
	assert.Contains(t, body, "Date must be in YYYY-MM-DD format")
	body = b.addSale("2024-03-30", "abc", "Facebook", "Spring")
	assert.Contains(t, body, "Revenue must be a number")

	body = b.nav(session.PageDashboard)
	assert.Contains(t, body, "$400.00")
	assert.Contains(t, body, "2024-03-30")

	body = b.nav(session.PageAnalytics)
	assert.Contains(t, body, heading(session.PageAnalytics))
	assert.Contains(t, body, "Platform Performance")

	_, body = b.get("/?window=7d")
	assert.Contains(t, body, "$100.00")
	assert.NotContains(t, body, "$250.50")

	var resp analyticsResponse
	code, raw := b.get("/api/analytics?window=30d")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, 350.5, resp.Summary.TotalRevenue)
	assert.Equal(t, 2, resp.Summary.Count)
	assert.Equal(t, 2, resp.Summary.DistinctCampaigns)
	require.NotNil(t, resp.Boundary)
	assert.Equal(t, "2024-03-01", resp.Boundary.Format("2006-01-02"))

	code, raw = b.get("/api/analytics?window=all")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, 400.0, resp.Summary.TotalRevenue)
	assert.InDelta(t, 133.3333, resp.Summary.MeanRevenue, 1e-3)

	code, _ = b.get("/api/analytics?window=1y")
	assert.Equal(t, http.StatusBadRequest, code)

	code, csv := b.get("/export.csv")
	require.Equal(t, http.StatusOK, code)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,revenue,platform,campaign", lines[0])
	assert.Equal(t, "2024-03-30,100,Facebook,Spring", lines[1])

	body = b.nav(session.PageProfile)
	assert.Contains(t, body, "ann@example.com")
	assert.Contains(t, body, "3 sales records")
}

func TestUsersSeeOnlyTheirOwnData(t *testing.T) {
	app := newTestApp(t, nil)

	ann := app.browser(t)
	ann.register("Ann", "ann@example.com", "secret1")
	ann.login("ann@example.com", "secret1")
	ann.addSale("2024-03-30", "100", "Facebook", "Spring")

	bob := app.browser(t)
	bob.register("Bob", "bob@example.com", "secret2")
	bob.login("bob@example.com", "secret2")
	bob.addSale("2024-03-29", "7", "Twitter", "Tweets")

	var resp analyticsResponse
	_, raw := bob.get("/api/analytics")
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, 7.0, resp.Summary.TotalRevenue)
	assert.Equal(t, 1, resp.Summary.Count)
}

func TestProtectedEndpointsRequireLogin(t *testing.T) {
	b := newTestApp(t, nil).browser(t)

	code, _ := b.get("/api/analytics")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = b.get("/export.csv")
	assert.Equal(t, http.StatusUnauthorized, code)

	body := b.addSale("2024-03-30", "100", "Facebook", "Spring")
	assert.Contains(t, body, heading(session.PageLogin))
	assert.Contains(t, body, "Please log in first")
}

func TestLoginIsRateLimited(t *testing.T) {
	app := newTestApp(t, ratelimit.NewMemoryLimiter("auth", 0.001, 2))
	b := app.browser(t)

	for i := 0; i < 2; i++ {
		code, _ := b.post("/login", url.Values{"email": {"x@example.com"}, "password": {"nope"}})
		assert.Equal(t, http.StatusOK, code)
	}
	code, _ := b.post("/login", url.Values{"email": {"x@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	app := newTestApp(t, ratelimit.NewMemoryLimiter("auth", 0.001, 2))
	client := &http.Client{}

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req, err := http.NewRequest(http.MethodPost, app.server.URL+"/login",
			strings.NewReader(url.Values{"email": {"x@example.com"}, "password": {"nope"}}.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		resp, err := client.Do(req)
		require.NoError(t, err)
		code, _ := readBody(t, resp)
		codes = append(codes, code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestHealthAndMetrics(t *testing.T) {
	b := newTestApp(t, nil).browser(t)
	b.get("/")

	code, body := b.get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"status":"ok"`)

	code, body = b.get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "salesconvert_http_requests_total")
}
