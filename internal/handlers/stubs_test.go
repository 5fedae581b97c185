package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"decoded-backend/internal/middleware"
	"decoded-backend/internal/models"
	"decoded-backend/internal/repository"
)

type stubGenerator struct {
	result     *models.GenerationResult
	capability *models.Capability
	err        error

	gotCredential string
	gotSource     string
	gotMode       models.Mode
	gotDeadline   bool
	forgotten     []string
}

func (s *stubGenerator) Generate(ctx context.Context, credential, sourceText string, mode models.Mode) (*models.GenerationResult, error) {
	s.gotCredential = credential
	s.gotSource = sourceText
	s.gotMode = mode
	_, s.gotDeadline = ctx.Deadline()
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubGenerator) Discover(ctx context.Context, credential string) (*models.Capability, error) {
	s.gotCredential = credential
	if s.err != nil {
		return nil, s.err
	}
	return s.capability, nil
}

func (s *stubGenerator) Forget(credential string) {
	s.forgotten = append(s.forgotten, credential)
}

// stubNoteRepo keeps notes in insertion order in memory.
type stubNoteRepo struct {
	notes   []models.Note
	saveErr error
}

func (s *stubNoteRepo) List(ctx context.Context) ([]models.Note, error) {
	return s.notes, nil
}

func (s *stubNoteRepo) Search(ctx context.Context, query string) ([]models.Note, error) {
	var out []models.Note
	for _, n := range s.notes {
		if strings.Contains(strings.ToLower(n.Title), strings.ToLower(query)) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubNoteRepo) Recent(ctx context.Context, n int) ([]models.Note, error) {
	var out []models.Note
	for i := len(s.notes) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.notes[i])
	}
	return out, nil
}

func (s *stubNoteRepo) Get(ctx context.Context, title string) (*models.Note, error) {
	for i := range s.notes {
		if s.notes[i].Title == title {
			return &s.notes[i], nil
		}
	}
	return nil, repository.ErrNoteNotFound
}

func (s *stubNoteRepo) Save(ctx context.Context, title, content string) (*models.Note, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	title = repository.NormalizeTitle(title)
	note := models.Note{Title: title, Content: content, Date: "2024-05-01"}
	for i := range s.notes {
		if s.notes[i].Title == title {
			s.notes[i] = note
			return &note, nil
		}
	}
	s.notes = append(s.notes, note)
	return &note, nil
}

func (s *stubNoteRepo) Delete(ctx context.Context, title string) error {
	for i := range s.notes {
		if s.notes[i].Title == title {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return nil
		}
	}
	return repository.ErrNoteNotFound
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withCredential(req *http.Request, credential string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.CredentialKey, credential))
}

func withTitle(req *http.Request, title string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("title", title)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
