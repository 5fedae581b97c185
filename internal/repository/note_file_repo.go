package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"decoded-backend/internal/models"
)

// FileNoteRepo keeps notes in a single JSON array document.
type FileNoteRepo struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewFileNoteRepo(path string, logger *slog.Logger) *FileNoteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileNoteRepo{path: path, logger: logger, now: time.Now}
}

// load reads the document. A missing or empty file is an empty list.
func (r *FileNoteRepo) load() ([]models.Note, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read notes file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Note{}, nil
	}

	var notes []models.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to parse notes file %s: %w", r.path, err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

// loadLenient is used by reads: an unreadable file shows as an empty library.
func (r *FileNoteRepo) loadLenient(ctx context.Context) []models.Note {
	notes, err := r.load()
	if err != nil {
		r.logger.WarnContext(ctx, "notes file unreadable; showing empty library", "path", r.path, "err", err)
		return []models.Note{}
	}
	return notes
}

// store writes the document through a temp file and rename.
func (r *FileNoteRepo) store(notes []models.Note) error {
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create notes dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".notes-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp notes file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write notes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write notes: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace notes file: %w", err)
	}
	return nil
}

func (r *FileNoteRepo) List(ctx context.Context) ([]models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLenient(ctx), nil
}

func (r *FileNoteRepo) Search(ctx context.Context, query string) ([]models.Note, error) {
	notes, _ := r.List(ctx)
	return filterByTitle(notes, query), nil
}

func (r *FileNoteRepo) Recent(ctx context.Context, n int) ([]models.Note, error) {
	notes, _ := r.List(ctx)
	return lastN(notes, n), nil
}

func (r *FileNoteRepo) Get(ctx context.Context, title string) (*models.Note, error) {
	notes, _ := r.List(ctx)
	title = NormalizeTitle(title)
	for i := range notes {
		if notes[i].Title == title {
			return &notes[i], nil
		}
	}
	return nil, ErrNoteNotFound
}

// Save creates the note or replaces the content and date of the note with
// the same title, keeping its position.
func (r *FileNoteRepo) Save(ctx context.Context, title, content string) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.load()
	if err != nil {
		return nil, err
	}

	note := models.Note{Title: NormalizeTitle(title), Content: content, Date: today(r.now)}
	replaced := false
	for i := range notes {
		if notes[i].Title == note.Title {
			notes[i] = note
			replaced = true
			break
		}
	}
	if !replaced {
		notes = append(notes, note)
	}

	if err := r.store(notes); err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *FileNoteRepo) Delete(ctx context.Context, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.load()
	if err != nil {
		return err
	}

	kept := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.Title != title {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(notes) {
		return ErrNoteNotFound
	}
	return r.store(kept)
}
