package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/daybook/daybook/internal/auth"
	"github.com/daybook/daybook/internal/cache"
	"github.com/daybook/daybook/internal/litestore"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/service"
	"github.com/daybook/daybook/internal/testutil"
)

// testEnv wires handlers to an in-memory SQLite store.
type testEnv struct {
	store    *litestore.Store
	journal  *service.JournalService
	accounts *service.AccountService
	router   chi.Router
	now      time.Time
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	s, err := litestore.Open(ctx, ":memory:", time.UTC)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(s.Close)

	env := &testEnv{store: s, now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	logger := discardLogger()

	env.journal = service.NewJournalService(s, nil, time.UTC, nil,
		service.WithClock(func() time.Time { return env.now }),
		service.WithPicker(func(n int) int { return 0 }),
	)
	env.accounts = service.NewAccountService(s, s, cache.NewMemorySessions(), time.Hour, nil, logger)
	prefs := service.NewPreferenceService(s, nil, logger)

	jh := NewJournalHandler(env.journal, logger, 64)
	ah := NewAuthHandler(env.accounts, logger, false)
	ph := NewPreferenceHandler(prefs, logger)

	r := chi.NewRouter()
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.Post("/auth/logout", ah.Logout)
	r.Group(func(r chi.Router) {
		r.Use(withTestPrincipal)
		r.Get("/auth/me", ah.Me)
		r.Get("/journal", jh.Today)
		r.Post("/entries", jh.Create)
		r.Get("/entries", jh.List)
		r.Get("/entries/random", jh.Random)
		r.Put("/entries/{id}", jh.Update)
		r.Delete("/entries/{id}", jh.Delete)
		r.Post("/entries/{id}/delete", jh.Delete)
		r.Get("/preferences/theme", ph.GetTheme)
		r.Post("/preferences/theme", ph.SetTheme)
	})
	env.router = r

	return env
}

// testAccountHeader names the account a test request acts as.
const testAccountHeader = "X-Test-Account"

func withTestPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(testAccountHeader); id != "" {
			r = r.WithContext(auth.ContextWithPrincipal(r.Context(), &model.Principal{AccountID: id}))
		}
		next.ServeHTTP(w, r)
	})
}

func (e *testEnv) account(t *testing.T, prefix string) *model.Account {
	t.Helper()
	a := testutil.NewTestAccount(t, prefix)
	if err := e.store.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func (e *testEnv) entry(t *testing.T, owner, content string, at time.Time) *model.Entry {
	t.Helper()
	entry := testutil.NewTestEntry(t, owner, content, at)
	if err := e.store.CreateEntry(context.Background(), entry); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	return entry
}

func (e *testEnv) do(t *testing.T, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if owner != "" {
		req.Header.Set(testAccountHeader, owner)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}
