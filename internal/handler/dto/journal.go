package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/daybook/daybook/internal/calendar"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/service"
)

// CreateEntryRequest is the body of POST /api/v1/entries.
type CreateEntryRequest struct {
	Content string `json:"content"`
}

// UpdateEntryRequest is the body of PUT /api/v1/entries/{id}.
type UpdateEntryRequest struct {
	Content string `json:"content"`
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Preview   string    `json:"preview"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodayResponse is the journal landing view.
type TodayResponse struct {
	Date        string          `json:"date"`
	Entries     []EntryResponse `json:"entries"`
	Dates       []string        `json:"dates_with_entries"`
	RandomEntry *EntryResponse  `json:"random_entry"`
}

// DayResponse lists the entries of one calendar day.
type DayResponse struct {
	Date    string          `json:"date"`
	Entries []EntryResponse `json:"entries"`
}

// CreateEntryResponse is returned after an entry is saved.
type CreateEntryResponse struct {
	Entry      EntryResponse   `json:"entry"`
	Date       string          `json:"date"`
	Entries    []EntryResponse `json:"entries"`
	EntrySaved bool            `json:"entry_saved"`
}

// DeleteEntryResponse is returned after an entry is deleted.
type DeleteEntryResponse struct {
	Date    string          `json:"date"`
	Entries []EntryResponse `json:"entries"`
	Target  string          `json:"target"`
}

// ToEntryResponse converts an Entry model to its DTO. The date is the
// calendar day of CreatedAt in loc.
func ToEntryResponse(e *model.Entry, loc *time.Location) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Content:   e.Content,
		Preview:   e.Preview(),
		Date:      calendar.Of(e.CreatedAt, loc).String(),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ToEntryResponses converts a list, never returning nil.
func ToEntryResponses(entries []*model.Entry, loc *time.Location) []EntryResponse {
	return lo.Map(entries, func(e *model.Entry, _ int) EntryResponse {
		return ToEntryResponse(e, loc)
	})
}

// ToTodayResponse converts the landing view.
func ToTodayResponse(v *service.TodayView, loc *time.Location) *TodayResponse {
	resp := &TodayResponse{
		Date:    v.Date.String(),
		Entries: ToEntryResponses(v.Entries, loc),
		Dates:   calendar.Strings(v.Dates),
	}
	if v.RandomEntry != nil {
		random := ToEntryResponse(v.RandomEntry, loc)
		resp.RandomEntry = &random
	}
	return resp
}

// ToDayResponse converts a single day view.
func ToDayResponse(v *service.DayView, loc *time.Location) *DayResponse {
	return &DayResponse{
		Date:    v.Date.String(),
		Entries: ToEntryResponses(v.Entries, loc),
	}
}

// ToCreateEntryResponse converts the result of saving an entry.
func ToCreateEntryResponse(r *service.CreateResult, loc *time.Location) *CreateEntryResponse {
	return &CreateEntryResponse{
		Entry:      ToEntryResponse(r.Entry, loc),
		Date:       r.Date.String(),
		Entries:    ToEntryResponses(r.Entries, loc),
		EntrySaved: true,
	}
}

// ToDeleteEntryResponse converts the result of deleting an entry.
func ToDeleteEntryResponse(r *service.DeleteResult, loc *time.Location) *DeleteEntryResponse {
	return &DeleteEntryResponse{
		Date:    r.Date.String(),
		Entries: ToEntryResponses(r.Entries, loc),
		Target:  r.Target,
	}
}
