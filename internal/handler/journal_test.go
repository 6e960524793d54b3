package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/daybook/daybook/internal/handler/dto"
	"github.com/daybook/daybook/internal/service"
)

func TestJournalHandler_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/journal", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestJournalHandler_Today(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "today")

	env.entry(t, a.ID, "last week", env.now.AddDate(0, 0, -7))
	env.entry(t, a.ID, "morning", env.now.Add(-3*time.Hour))
	env.entry(t, a.ID, "noon", env.now)

	rec := env.do(t, http.MethodGet, "/journal", a.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decode[dto.TodayResponse](t, rec)
	if resp.Date != "2024-03-15" {
		t.Errorf("date = %s, want 2024-03-15", resp.Date)
	}
	if len(resp.Entries) != 2 || resp.Entries[0].Content != "noon" || resp.Entries[1].Content != "morning" {
		t.Errorf("unexpected entries: %+v", resp.Entries)
	}
	if got := strings.Join(resp.Dates, ","); got != "2024-03-08,2024-03-15" {
		t.Errorf("dates = %s", got)
	}
	if resp.RandomEntry == nil || resp.RandomEntry.Content != "last week" {
		t.Errorf("random entry = %+v, want last week", resp.RandomEntry)
	}
}

func TestJournalHandler_TodayEmpty(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "empty")

	rec := env.do(t, http.MethodGet, "/journal", a.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `"entries":[]`) || !strings.Contains(body, `"dates_with_entries":[]`) {
		t.Errorf("empty lists should encode as [], got %s", body)
	}
	if !strings.Contains(body, `"random_entry":null`) {
		t.Errorf("random_entry should be null, got %s", body)
	}
}

func TestJournalHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "create")

	rec := env.do(t, http.MethodPost, "/entries", a.ID, dto.CreateEntryRequest{Content: "  Hello  "})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decode[dto.CreateEntryResponse](t, rec)
	if resp.Entry.Content != "Hello" {
		t.Errorf("content = %q, want trimmed Hello", resp.Entry.Content)
	}
	if !resp.EntrySaved {
		t.Error("entry_saved should be true")
	}
	if resp.Date != "2024-03-15" || len(resp.Entries) != 1 {
		t.Errorf("unexpected reload: date %s, %d entries", resp.Date, len(resp.Entries))
	}
}

func TestJournalHandler_CreateRejectsBadContent(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "reject")

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{"empty", dto.CreateEntryRequest{Content: ""}, "EMPTY_CONTENT"},
		{"whitespace", dto.CreateEntryRequest{Content: "   \n"}, "EMPTY_CONTENT"},
		{"too long", dto.CreateEntryRequest{Content: strings.Repeat("x", 65)}, "CONTENT_TOO_LONG"},
		{"bad json", "{not json", "INVALID_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/entries", a.ID, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			resp := decode[dto.ErrorResponse](t, rec)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
		})
	}

	rec := env.do(t, http.MethodGet, "/journal", a.ID, nil)
	if resp := decode[dto.TodayResponse](t, rec); len(resp.Entries) != 0 {
		t.Errorf("rejected content was stored: %+v", resp.Entries)
	}
}

func TestJournalHandler_ListByDate(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "bydate")
	env.entry(t, a.ID, "first", time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))
	env.entry(t, a.ID, "second", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))
	env.entry(t, a.ID, "other day", time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC))

	rec := env.do(t, http.MethodGet, "/entries?date=2024-01-05", a.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	resp := decode[dto.DayResponse](t, rec)
	if len(resp.Entries) != 2 || resp.Entries[0].Content != "second" || resp.Entries[1].Content != "first" {
		t.Errorf("unexpected entries: %+v", resp.Entries)
	}
	if resp.Entries[0].Date != "2024-01-05" {
		t.Errorf("entry date = %s", resp.Entries[0].Date)
	}

	for _, q := range []string{"", "?date=", "?date=2024-13-40", "?date=05/01/2024"} {
		rec := env.do(t, http.MethodGet, "/entries"+q, a.ID, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET /entries%s: expected status 400, got %d", q, rec.Code)
		}
	}
}

func TestJournalHandler_Random(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "random")

	env.entry(t, a.ID, "today only", env.now)
	rec := env.do(t, http.MethodGet, "/entries/random", a.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 with no past entries, got %d", rec.Code)
	}

	env.entry(t, a.ID, "yesterday", env.now.AddDate(0, 0, -1))
	rec = env.do(t, http.MethodGet, "/entries/random", a.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if resp := decode[dto.EntryResponse](t, rec); resp.Content != "yesterday" {
		t.Errorf("random entry = %q", resp.Content)
	}
}

func TestJournalHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "owner")
	b := env.account(t, "intruder")

	day := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	keep := env.entry(t, a.ID, "keep", day)
	drop := env.entry(t, a.ID, "drop", day.Add(time.Hour))

	rec := env.do(t, http.MethodDelete, "/entries/"+drop.ID, b.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleting another account's entry: expected 404, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/entries/"+drop.ID+"/delete?target="+service.TargetPastEntries, a.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[dto.DeleteEntryResponse](t, rec)
	if resp.Date != "2024-02-01" {
		t.Errorf("date = %s, want the deleted entry's day", resp.Date)
	}
	if resp.Target != service.TargetPastEntries {
		t.Errorf("target = %s", resp.Target)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].ID != keep.ID {
		t.Errorf("remaining entries = %+v", resp.Entries)
	}

	rec = env.do(t, http.MethodDelete, "/entries/"+drop.ID, a.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/entries/"+keep.ID+"?target=somewhere-else", a.ID, nil)
	if resp := decode[dto.DeleteEntryResponse](t, rec); resp.Target != service.TargetEntriesList {
		t.Errorf("unknown target should fall back to %s, got %s", service.TargetEntriesList, resp.Target)
	}

	rec = env.do(t, http.MethodDelete, "/entries/not-a-ulid", a.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("malformed id: expected 404, got %d", rec.Code)
	}
}

func TestJournalHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(t, "edit")
	e := env.entry(t, a.ID, "draft", env.now.Add(-time.Hour))

	rec := env.do(t, http.MethodPut, "/entries/"+e.ID, a.ID, dto.UpdateEntryRequest{Content: "final"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[dto.EntryResponse](t, rec)
	if resp.Content != "final" || !resp.UpdatedAt.Equal(env.now) {
		t.Errorf("unexpected update result: %+v", resp)
	}

	rec = env.do(t, http.MethodPut, "/entries/"+e.ID, a.ID, dto.UpdateEntryRequest{Content: " "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank update: expected 400, got %d", rec.Code)
	}
}
