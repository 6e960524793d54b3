package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/daybook/daybook/internal/handler/dto"
)

func TestPreferenceHandler_DefaultTheme(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "theme")

	rec := env.do(t, http.MethodGet, "/preferences/theme", a.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if resp := decode[dto.ThemeResponse](t, rec); resp.Theme != "system" {
		t.Errorf("theme = %s, want system", resp.Theme)
	}
}

func TestPreferenceHandler_SetTheme(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "theme")

	rec := env.do(t, http.MethodPost, "/preferences/theme", a.ID, dto.ThemeRequest{Theme: "dark"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	// Unknown values are ignored but still answer 204.
	rec = env.do(t, http.MethodPost, "/preferences/theme", a.ID, dto.ThemeRequest{Theme: "purple"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("invalid theme: expected status 204, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/preferences/theme", a.ID, nil)
	if resp := decode[dto.ThemeResponse](t, rec); resp.Theme != "dark" {
		t.Errorf("theme = %s, want dark", resp.Theme)
	}
}

func TestPreferenceHandler_SetThemeForm(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "form")

	form := url.Values{"theme": {"light"}}
	req := httptest.NewRequest(http.MethodPost, "/preferences/theme", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(testAccountHeader, a.ID)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/preferences/theme", a.ID, nil)
	if resp := decode[dto.ThemeResponse](t, rec); resp.Theme != "light" {
		t.Errorf("theme = %s, want light", resp.Theme)
	}
}
