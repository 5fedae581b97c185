package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"decoded-backend/internal/models"
	"decoded-backend/internal/services"
)

type ExtractHandler struct {
	extractor *services.FileExtractService
	maxBytes  int64
	logger    *slog.Logger
}

func NewExtractHandler(extractor *services.FileExtractService, maxBytes int64, logger *slog.Logger) *ExtractHandler {
	return &ExtractHandler{extractor: extractor, maxBytes: maxBytes, logger: logger}
}

// Extract handles POST /api/v1/extract with a multipart "file" field.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File exceeds the upload limit", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Expected a multipart form", r))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "File is required",
			map[string]string{"file": "required"}, r))
		return
	}
	defer file.Close()

	if !services.SupportedExtension(header.Filename) {
		writeJSON(w, http.StatusBadRequest, errorResp("UNSUPPORTED_FILE", "Supported files are PDF, TXT, MD and DOCX", r))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Could not read upload", r))
		return
	}

	extraction, err := h.extractor.Extract(header.Filename, data)
	if errors.Is(err, services.ErrNoExtractableText) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("NO_TEXT", err.Error(), r))
		return
	}
	if err != nil {
		h.logger.WarnContext(r.Context(), "extraction failed", "file", header.Filename, "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("EXTRACTION_FAILED", "Could not read this file", r))
		return
	}

	writeJSON(w, http.StatusOK, models.ExtractResponse{
		Title:     strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename)),
		Text:      extraction.Text,
		PagesRead: extraction.PagesRead,
	})
}
