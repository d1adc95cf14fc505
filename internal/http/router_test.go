package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-exercise-tracker/internal/config"
	"github.com/tbourn/go-exercise-tracker/internal/http/middleware"
	"github.com/tbourn/go-exercise-tracker/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:routerdb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// testConfig returns a config with a views dir holding index.html and a
// static dir holding style.css.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	views, public := t.TempDir(), t.TempDir()
	if err := os.WriteFile(filepath.Join(views, "index.html"), []byte("<html><body>Exercise tracker</body></html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(public, "style.css"), []byte("body{margin:0}"), 0o644); err != nil {
		t.Fatalf("write css: %v", err)
	}
	return config.Config{
		APIBasePath:    "/api",
		RateRPS:        100,
		RateBurst:      50,
		ViewsDir:       views,
		StaticDir:      public,
		Location:       time.UTC,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t)
	RegisterRoutes(r, db, cfg)
	return r, db
}

func do(r http.Handler, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var formHdr = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

func TestRegisterRoutes_DefaultRateLimitAllowsScriptedClient(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateRPS, cfg.RateBurst = config.DefaultRateRPS, config.DefaultRateBurst
	r, _ := newRouter(t, cfg)

	for i := 0; i < 50; i++ {
		w := do(r, http.MethodPost, "/api/users", strings.NewReader("username=ann"), formHdr)
		if w.Code != http.StatusOK && w.Code != http.StatusCreated {
			t.Fatalf("POST #%d = %d", i, w.Code)
		}
		if w = do(r, http.MethodGet, "/api/users", nil, nil); w.Code != http.StatusOK {
			t.Fatalf("GET #%d = %d", i, w.Code)
		}
	}
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newRouter(t, testConfig(t))

	// /health works
	w := do(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = do(r, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → JSON 404
	w = do(r, http.MethodGet, "/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"not_found"`) {
		t.Fatalf("expected JSON envelope, got %s", w.Body.String())
	}

	// NoMethod → 405 (POST /health)
	w = do(r, http.MethodPost, "/health", nil, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}

	// swagger is off by default
	w = do(r, http.MethodGet, "/swagger/index.html", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be unmounted, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig(t)
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r, _ := newRouter(t, cfg)

	w := do(r, http.MethodGet, "/health", nil, map[string]string{"Origin": "http://example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}

	w = do(r, http.MethodGet, "/health", nil, map[string]string{"Origin": "http://evil.test"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "http://evil.test" {
		t.Fatalf("unexpected ACAO for foreign origin")
	}
}

func TestRegisterRoutes_LandingPageAndAssets(t *testing.T) {
	r, _ := newRouter(t, testConfig(t))

	w := do(r, http.MethodGet, "/", nil, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Exercise tracker") {
		t.Fatalf("GET / = %d %q", w.Code, w.Body.String())
	}
	if csp := w.Header().Get("Content-Security-Policy"); csp != sitePolicy {
		t.Fatalf("csp=%q", csp)
	}

	w = do(r, http.MethodGet, "/style.css", nil, nil)
	if w.Code != http.StatusOK || w.Body.String() != "body{margin:0}" {
		t.Fatalf("GET /style.css = %d %q", w.Code, w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); cc == "no-cache" {
		t.Fatalf("assets should stay cacheable")
	}
	if cc := do(r, http.MethodGet, "/api/users", nil, nil).Header().Get("Cache-Control"); cc != "no-cache" {
		t.Fatalf("api Cache-Control=%q", cc)
	}
}

func TestRegisterRoutes_SwaggerEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.SwaggerEnabled = true
	r, _ := newRouter(t, cfg)

	w := do(r, http.MethodGet, "/swagger/doc.json", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /swagger/doc.json = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/users/{id}/logs") {
		t.Fatalf("swagger doc missing log route")
	}
	if csp := do(r, http.MethodGet, "/", nil, nil).Header().Get("Content-Security-Policy"); csp != "" {
		t.Fatalf("csp must be off with swagger, got %q", csp)
	}
}

func TestRegisterRoutes_ExerciseFlow(t *testing.T) {
	r, _ := newRouter(t, testConfig(t))

	w := do(r, http.MethodPost, "/api/users", strings.NewReader("username=fcc_test"), formHdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("create user = %d %s", w.Code, w.Body.String())
	}
	var user struct{ ID, Username string }
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil || user.ID == "" {
		t.Fatalf("user body %s err=%v", w.Body.String(), err)
	}

	form := url.Values{"description": {"run"}, "duration": {"30"}, "date": {"2024-01-01"}}
	w = do(r, http.MethodPost, "/api/users/"+user.ID+"/exercises", strings.NewReader(form.Encode()), formHdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("add exercise = %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/users/"+user.ID+"/logs?from=2023-12-31&limit=5", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logs = %d", w.Code)
	}
	var lg struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
		Log   []struct {
			Description string `json:"description"`
			Duration    int    `json:"duration"`
			Date        string `json:"date"`
		} `json:"log"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &lg); err != nil {
		t.Fatalf("json: %v", err)
	}
	if lg.ID != user.ID || lg.Count != 1 || lg.Log[0].Date != "Mon Jan 01 2024" || lg.Log[0].Duration != 30 {
		t.Fatalf("unexpected log: %+v", lg)
	}

	w = do(r, http.MethodGet, "/api/users/unknown/logs", nil, nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"error":"Unknown user"`) {
		t.Fatalf("unknown user = %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_GzipWhenAccepted(t *testing.T) {
	r, _ := newRouter(t, testConfig(t))

	w := do(r, http.MethodGet, "/api/users", nil, map[string]string{"Accept-Encoding": "gzip"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/users = %d", w.Code)
	}
	if ce := w.Header().Get("Content-Encoding"); ce != "gzip" {
		t.Fatalf("expected gzip, got %q", ce)
	}
}

func TestRegisterRoutes_IdempotencyReplayBypassesRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateRPS = 0.001
	cfg.RateBurst = 2
	r, db := newRouter(t, cfg)

	u, err := repo.CreateUser(context.Background(), db, "ann")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	path := "/api/users/" + u.ID + "/exercises"
	hdr := map[string]string{
		"Content-Type":                  "application/x-www-form-urlencoded",
		middleware.HeaderIdempotencyKey: "retry-1",
	}

	// burst of 2: the original request and one more
	w := do(r, http.MethodPost, path, strings.NewReader("duration=5"), hdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("first add = %d %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodGet, "/api/users", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}

	// bucket is empty; a plain request is limited
	w = do(r, http.MethodGet, "/api/users", nil, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	// the replay still goes through
	w = do(r, http.MethodPost, path, strings.NewReader("duration=5"), hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("replay = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("missing replay header")
	}
}

func TestRegisterRoutes_IdempotencyLookupError(t *testing.T) {
	r, db := newRouter(t, testConfig(t))

	// force queries to fail by closing the underlying connection
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()

	w := do(r, http.MethodPost, "/api/users/u1/exercises", strings.NewReader("duration=1"), map[string]string{
		"Content-Type":                  "application/x-www-form-urlencoded",
		middleware.HeaderIdempotencyKey: "force-error",
	})
	// the lookup error is swallowed; the service then fails on the closed DB
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func Test_userRepoShim_Proxies(t *testing.T) {
	db := newTestDB(t)
	shim := userRepoShim{}
	ctx := context.Background()

	u1, err := shim.CreateUser(ctx, db, "ann")
	if err != nil || u1.ID == "" {
		t.Fatalf("CreateUser: %v %+v", err, u1)
	}
	if _, err := shim.CreateUser(ctx, db, "bob"); err != nil {
		t.Fatalf("CreateUser bob: %v", err)
	}

	found, err := shim.FindUserByUsername(ctx, db, "ann")
	if err != nil || found.ID != u1.ID {
		t.Fatalf("FindUserByUsername: %v %+v", err, found)
	}
	all, err := shim.ListUsers(ctx, db)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListUsers: %v len=%d", err, len(all))
	}
	n, maxTS, err := shim.UsersStats(ctx, db)
	if err != nil || n != 2 || maxTS == nil {
		t.Fatalf("UsersStats: %v n=%d max=%v", err, n, maxTS)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := do(r, http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB"), nil) // 12 bytes
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	// non-root prefix
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := do(r, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
}
