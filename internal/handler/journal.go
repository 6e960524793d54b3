package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daybook/daybook/internal/handler/dto"
	"github.com/daybook/daybook/internal/middleware"
	"github.com/daybook/daybook/internal/service"
)

// JournalHandler handles HTTP requests for journal entries.
type JournalHandler struct {
	svc            *service.JournalService
	logger         *slog.Logger
	maxEntryLength int
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(svc *service.JournalService, logger *slog.Logger, maxEntryLength int) *JournalHandler {
	return &JournalHandler{
		svc:            svc,
		logger:         logger,
		maxEntryLength: maxEntryLength,
	}
}

// Today handles GET /api/v1/journal.
func (h *JournalHandler) Today(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	view, err := h.svc.TodayView(r.Context(), owner)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTodayResponse(view, h.svc.Location()))
}

// Create handles POST /api/v1/entries.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req dto.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	content, ok := h.validateContent(w, req.Content)
	if !ok {
		return
	}

	result, err := h.svc.CreateAndReload(r.Context(), owner, content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("entry_created",
		"entry_id", result.Entry.ID,
		"account_id", owner,
		"preview", result.Entry.Preview(),
	)

	writeJSON(w, http.StatusCreated, dto.ToCreateEntryResponse(result, h.svc.Location()))
}

// List handles GET /api/v1/entries?date=YYYY-MM-DD.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	view, err := h.svc.DateView(r.Context(), owner, r.URL.Query().Get("date"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDayResponse(view, h.svc.Location()))
}

// Random handles GET /api/v1/entries/random.
// Answers 204 when the account has nothing from an earlier day.
func (h *JournalHandler) Random(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.RandomPastEntry(r.Context(), owner)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEntryResponse(entry, h.svc.Location()))
}

// Update handles PUT /api/v1/entries/{id}.
func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if middleware.ValidateEntryID(id) != nil {
		h.handleServiceError(w, r, service.ErrNotFound)
		return
	}

	var req dto.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	content, ok := h.validateContent(w, req.Content)
	if !ok {
		return
	}

	entry, err := h.svc.UpdateEntry(r.Context(), owner, id, content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEntryResponse(entry, h.svc.Location()))
}

// Delete handles DELETE /api/v1/entries/{id} and
// POST /api/v1/entries/{id}/delete?target=...
func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	// A malformed id cannot name an entry, so it gets the same answer as a
	// missing one.
	id := chi.URLParam(r, "id")
	if middleware.ValidateEntryID(id) != nil {
		h.handleServiceError(w, r, service.ErrNotFound)
		return
	}

	result, err := h.svc.DeleteAndReload(r.Context(), owner, id, r.URL.Query().Get("target"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("entry_deleted",
		"entry_id", id,
		"account_id", owner,
	)

	writeJSON(w, http.StatusOK, dto.ToDeleteEntryResponse(result, h.svc.Location()))
}

func (h *JournalHandler) validateContent(w http.ResponseWriter, raw string) (string, bool) {
	content, err := middleware.ValidateEntryContent(raw, h.maxEntryLength)
	switch {
	case errors.Is(err, middleware.ErrContentEmpty):
		writeError(w, http.StatusBadRequest, "EMPTY_CONTENT", "Entry content is required")
		return "", false
	case errors.Is(err, middleware.ErrContentTooLong):
		writeError(w, http.StatusBadRequest, "CONTENT_TOO_LONG", "Entry content exceeds maximum length")
		return "", false
	}
	return content, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *JournalHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "ENTRY_NOT_FOUND", "Entry not found")
	case errors.Is(err, service.ErrMalformedInput):
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "A date in YYYY-MM-DD format is required")
	default:
		h.logger.Error("internal_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
