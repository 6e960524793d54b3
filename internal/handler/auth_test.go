package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daybook/daybook/internal/handler/dto"
	"github.com/daybook/daybook/internal/middleware"
)

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_RegisterLogsIn(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{
		Username:        "writer",
		Password:        "correct horse",
		PasswordConfirm: "correct horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("registration should set the session cookie")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags: HttpOnly=%v SameSite=%v", cookie.HttpOnly, cookie.SameSite)
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("cookie MaxAge = %d, want the session TTL of 3600", cookie.MaxAge)
	}

	resp := decode[dto.SessionResponse](t, rec)
	if resp.Token != cookie.Value {
		t.Errorf("body token and cookie differ")
	}
	if resp.Account.Username != "writer" {
		t.Errorf("username = %s", resp.Account.Username)
	}
}

func TestAuthHandler_RegisterErrors(t *testing.T) {
	env := newTestEnv(t)
	env.account(t, "taken")

	tests := []struct {
		name       string
		req        dto.RegisterRequest
		wantStatus int
		wantCode   string
	}{
		{"empty username", dto.RegisterRequest{Username: "", Password: "password1", PasswordConfirm: "password1"}, http.StatusBadRequest, "INVALID_USERNAME"},
		{"bad characters", dto.RegisterRequest{Username: "a b c", Password: "password1", PasswordConfirm: "password1"}, http.StatusBadRequest, "INVALID_USERNAME"},
		{"short password", dto.RegisterRequest{Username: "writer2", Password: "short", PasswordConfirm: "short"}, http.StatusBadRequest, "INVALID_PASSWORD"},
		{"mismatch", dto.RegisterRequest{Username: "writer3", Password: "password1", PasswordConfirm: "password2"}, http.StatusBadRequest, "PASSWORD_MISMATCH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/auth/register", "", tt.req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if resp := decode[dto.ErrorResponse](t, rec); resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
		})
	}

	req := dto.RegisterRequest{Username: "dupe", Password: "password1", PasswordConfirm: "password1"}
	if rec := env.do(t, http.MethodPost, "/auth/register", "", req); rec.Code != http.StatusCreated {
		t.Fatalf("first registration: %d", rec.Code)
	}
	req.Username = "DUPE"
	if rec := env.do(t, http.MethodPost, "/auth/register", "", req); rec.Code != http.StatusConflict {
		t.Errorf("case-insensitive duplicate: expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_LoginLogout(t *testing.T) {
	env := newTestEnv(t)

	reg := dto.RegisterRequest{Username: "returning", Password: "password1", PasswordConfirm: "password1"}
	if rec := env.do(t, http.MethodPost, "/auth/register", "", reg); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "returning", Password: "wrong password"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "nobody", Password: "password1"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: expected 401, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "returning", Password: "password1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	token := decode[dto.SessionResponse](t, rec).Token

	ctx := context.Background()
	if _, err := env.accounts.ResolveSession(ctx, token); err != nil {
		t.Fatalf("session should resolve after login: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	out := httptest.NewRecorder()
	env.router.ServeHTTP(out, req)
	if out.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", out.Code)
	}
	if c := sessionCookie(out); c == nil || c.MaxAge >= 0 {
		t.Errorf("logout should expire the cookie, got %+v", c)
	}

	if _, err := env.accounts.ResolveSession(ctx, token); err == nil {
		t.Error("session should be gone after logout")
	}
}

func TestAuthHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "me")

	rec := env.do(t, http.MethodGet, "/auth/me", a.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[dto.AccountResponse](t, rec)
	if resp.ID != a.ID || resp.Username != a.Username {
		t.Errorf("got %+v, want account %s", resp, a.ID)
	}

	rec = env.do(t, http.MethodGet, "/auth/me", "01HZZZZZZZZZZZZZZZZZZZZZZZ", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown account: expected status 401, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no session: expected status 401, got %d", rec.Code)
	}
}
