package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"decoded-backend/internal/models"
	"decoded-backend/internal/repository"
)

// RecentNotes is how many notes GET /notes/recent returns.
const RecentNotes = 3

type NoteHandler struct {
	notes  repository.NoteRepo
	logger *slog.Logger
}

func NewNoteHandler(notes repository.NoteRepo, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, "list notes failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

func (h *NoteHandler) Recent(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.Recent(r.Context(), RecentNotes)
	if err != nil {
		h.fail(w, r, "recent notes failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.Context(), titleParam(r))
	if errors.Is(err, repository.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Note not found", r))
		return
	}
	if err != nil {
		h.fail(w, r, "get note failed", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Save handles PUT /api/v1/notes, creating or replacing by title.
func (h *NoteHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	note, err := h.notes.Save(r.Context(), req.Title, req.Content)
	if err != nil {
		h.fail(w, r, "save note failed", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.notes.Delete(r.Context(), titleParam(r))
	if errors.Is(err, repository.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Note not found", r))
		return
	}
	if err != nil {
		h.fail(w, r, "delete note failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, "err", err)
	writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Note storage failed", r))
}
