package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook/daybook/internal/cache"
	"github.com/daybook/daybook/internal/handler"
	"github.com/daybook/daybook/internal/handler/dto"
	"github.com/daybook/daybook/internal/litestore"
	"github.com/daybook/daybook/internal/metrics"
	"github.com/daybook/daybook/internal/middleware"
	"github.com/daybook/daybook/internal/service"
)

func newTestRouter(t *testing.T, opts ...func(*RouterConfig)) (http.Handler, *metrics.PrometheusRecorder) {
	t.Helper()

	s, err := litestore.Open(context.Background(), ":memory:", time.UTC)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	logger := discardLogger()
	recorder := metrics.NewPrometheus()

	journal := service.NewJournalService(s, nil, time.UTC, recorder, service.WithLogger(logger))
	accounts := service.NewAccountService(s, s, cache.NewMemorySessions(), time.Hour, recorder, logger)
	prefs := service.NewPreferenceService(s, recorder, logger)

	cfg := RouterConfig{
		Logger:             logger,
		Journal:            journal,
		Accounts:           accounts,
		Preferences:        prefs,
		Health:             handler.NewHealthHandler(s, nil),
		Metrics:            recorder.Handler(),
		Recorder:           recorder,
		IsDevelopment:      true,
		MaxRequestBodySize: 1 << 20,
		MaxEntryLength:     1000,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewRouter(cfg), recorder
}

// budgetLimiter allows a fixed number of credential attempts in total.
type budgetLimiter struct {
	budget int
	calls  int
}

func (b *budgetLimiter) CheckLoginRateLimit(_ context.Context, _ string, _, _ int) (*cache.RateLimitResult, error) {
	b.calls++
	res := &cache.RateLimitResult{Allowed: b.calls <= b.budget, ResetAt: time.Now().Add(time.Minute)}
	if !res.Allowed {
		res.RetryAfter = 30 * time.Second
	}
	return res, nil
}

type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}
	return rec
}

func TestRouter_JournalFlow(t *testing.T) {
	h, _ := newTestRouter(t)
	c := &client{t: t, h: h}

	rec := c.do(http.MethodGet, "/api/v1/journal", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Username: "diarist", Password: "long password", PasswordConfirm: "long password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, c.cookie)

	rec = c.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"username":"diarist"`)

	rec = c.do(http.MethodPost, "/api/v1/entries", dto.CreateEntryRequest{Content: "Hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created dto.CreateEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = c.do(http.MethodGet, "/api/v1/journal", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var today dto.TodayResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&today))
	require.Len(t, today.Entries, 1)
	assert.Equal(t, "Hello", today.Entries[0].Content)
	assert.Equal(t, []string{today.Date}, today.Dates)
	assert.Nil(t, today.RandomEntry)

	rec = c.do(http.MethodGet, "/api/v1/entries?date="+today.Date, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/entries/random", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/preferences/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"theme":"system"`)

	rec = c.do(http.MethodPost, "/api/v1/preferences/theme", dto.ThemeRequest{Theme: "dark"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodDelete, "/api/v1/entries/"+created.Entry.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"target":"entries-list"`)

	rec = c.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, c.cookie)

	rec = c.do(http.MethodGet, "/api/v1/journal", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AccountsAreIsolated(t *testing.T) {
	h, _ := newTestRouter(t)
	alice := &client{t: t, h: h}
	bob := &client{t: t, h: h}

	for name, c := range map[string]*client{"alice": alice, "bob": bob} {
		rec := c.do(http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
			Username: name, Password: "password1", PasswordConfirm: "password1",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := alice.do(http.MethodPost, "/api/v1/entries", dto.CreateEntryRequest{Content: "private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.CreateEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = bob.do(http.MethodGet, "/api/v1/journal", nil)
	assert.NotContains(t, rec.Body.String(), "private")

	rec = bob.do(http.MethodPost, "/api/v1/entries/"+created.Entry.ID+"/delete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = alice.do(http.MethodGet, "/api/v1/journal", nil)
	assert.Contains(t, rec.Body.String(), "private")
}

func TestRouter_Infrastructure(t *testing.T) {
	h, _ := newTestRouter(t)
	c := &client{t: t, h: h}

	rec := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = c.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	rec = c.do(http.MethodGet, "/no/such/route", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)

	c.do(http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Username: "counted", Password: "password1", PasswordConfirm: "password1",
	})
	c.do(http.MethodPost, "/api/v1/entries", dto.CreateEntryRequest{Content: "metric"})

	rec = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `daybook_entries_total{op="created"} 1`), body)
	assert.Contains(t, body, "daybook_accounts_registered_total 1")
}

func TestRouter_RegisterSharesLoginRateLimit(t *testing.T) {
	limiter := &budgetLimiter{budget: 2}
	h, _ := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.Limiter = limiter
		cfg.RateLimitLoginEnabled = true
		cfg.RateLimitLoginRPM = 10
		cfg.RateLimitLoginBurst = 2
	})
	c := &client{t: t, h: h}

	rec := c.do(http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Username: "first", Password: "password1", PasswordConfirm: "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "first", Password: "password1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Username: "second", Password: "password1", PasswordConfirm: "password1",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"RATE_LIMITED"`)
	assert.Equal(t, 3, limiter.calls)
}

func TestRouter_MeRequiresSession(t *testing.T) {
	h, _ := newTestRouter(t)
	c := &client{t: t, h: h}

	rec := c.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
