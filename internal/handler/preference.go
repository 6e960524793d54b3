package handler

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"github.com/daybook/daybook/internal/handler/dto"
	"github.com/daybook/daybook/internal/middleware"
	"github.com/daybook/daybook/internal/service"
)

// PreferenceHandler handles the theme preference.
type PreferenceHandler struct {
	svc    *service.PreferenceService
	logger *slog.Logger
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(svc *service.PreferenceService, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{svc: svc, logger: logger}
}

// GetTheme handles GET /api/v1/preferences/theme.
func (h *PreferenceHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	pref, err := h.svc.GetTheme(r.Context(), owner)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToThemeResponse(pref))
}

// SetTheme handles POST /api/v1/preferences/theme.
// Accepts a JSON body or a form field named theme. Unknown themes are
// ignored and the answer is 204 either way.
func (h *PreferenceHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if _, _, err := h.svc.SetTheme(r.Context(), owner, themeFromRequest(r)); err != nil {
		h.internalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func themeFromRequest(r *http.Request) string {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req dto.ThemeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return ""
		}
		return req.Theme
	}
	return r.FormValue("theme")
}

func (h *PreferenceHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal_error",
		"error", err,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}
