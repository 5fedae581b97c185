package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"decoded-backend/internal/middleware"
	"decoded-backend/internal/models"
	"decoded-backend/internal/repository"
)

// SummarySeparator precedes a generated summary appended to a note.
const SummarySeparator = "\n\n--- AI Summary ---\n"

// SummaryNoteContent is the content a note is saved with after summary is
// appended. An existing note keeps its own content ahead of the summary;
// otherwise the source text the summary came from is used.
func SummaryNoteContent(existing *models.Note, source, summary string) string {
	base := source
	if existing != nil {
		base = existing.Content
	}
	return base + SummarySeparator + summary
}

// Generator is the gateway surface the HTTP layer depends on.
type Generator interface {
	Generate(ctx context.Context, credential, sourceText string, mode models.Mode) (*models.GenerationResult, error)
	Discover(ctx context.Context, credential string) (*models.Capability, error)
	Forget(credential string)
}

type GenerateHandler struct {
	gen     Generator
	notes   repository.NoteRepo
	timeout time.Duration
	logger  *slog.Logger
}

func NewGenerateHandler(gen Generator, notes repository.NoteRepo, timeout time.Duration, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{gen: gen, notes: notes, timeout: timeout, logger: logger}
}

// Generate handles POST /api/v1/generate. The source is the request text or,
// when that is empty, the content of the named note.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, models.ErrUnknownMode) {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", err.Error(),
				map[string]string{"mode": "oneof"}, r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Mode.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Mode is required",
			map[string]string{"mode": "required"}, r))
		return
	}

	source := req.Text
	var note *models.Note
	if req.NoteTitle != "" {
		n, err := h.notes.Get(r.Context(), req.NoteTitle)
		switch {
		case errors.Is(err, repository.ErrNoteNotFound):
			if strings.TrimSpace(source) == "" {
				writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Note not found", r))
				return
			}
		case err != nil:
			h.logger.ErrorContext(r.Context(), "load note failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load note", r))
			return
		default:
			note = n
			if strings.TrimSpace(source) == "" {
				source = n.Content
			}
		}
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.gen.Generate(ctx, middleware.GetCredential(r.Context()), source, req.Mode)
	if err != nil {
		handleGenerationError(w, r, err)
		return
	}

	if req.SaveToNote && req.Mode == models.ModeSummary {
		if _, err := h.notes.Save(r.Context(), req.NoteTitle, SummaryNoteContent(note, source, result.Text)); err != nil {
			h.logger.ErrorContext(r.Context(), "save summary to note failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Summary generated but could not be saved", r))
			return
		}
	}

	_, malformed := result.Malformed()
	writeJSON(w, http.StatusOK, models.GenerateResponse{GenerationResult: result, Malformed: malformed})
}

// Backends handles GET /api/v1/backends.
func (h *GenerateHandler) Backends(w http.ResponseWriter, r *http.Request) {
	capability, err := h.gen.Discover(r.Context(), middleware.GetCredential(r.Context()))
	if err != nil {
		handleGenerationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, capability)
}

// ForgetBackends handles DELETE /api/v1/backends.
func (h *GenerateHandler) ForgetBackends(w http.ResponseWriter, r *http.Request) {
	credential := middleware.GetCredential(r.Context())
	if credential == "" {
		writeJSON(w, http.StatusUnauthorized, errorResp("CREDENTIAL_MISSING", "API key is missing. Please check Settings.", r))
		return
	}
	h.gen.Forget(credential)
	w.WriteHeader(http.StatusNoContent)
}
