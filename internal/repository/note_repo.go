package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"decoded-backend/internal/models"
)

var ErrNoteNotFound = errors.New("note not found")

// NoteRepo stores notes keyed by title. List returns notes in the order
// they were first saved.
type NoteRepo interface {
	List(ctx context.Context) ([]models.Note, error)
	Search(ctx context.Context, query string) ([]models.Note, error)
	Recent(ctx context.Context, n int) ([]models.Note, error)
	Get(ctx context.Context, title string) (*models.Note, error)
	Save(ctx context.Context, title, content string) (*models.Note, error)
	Delete(ctx context.Context, title string) error
}

// NormalizeTitle trims title and substitutes the default for blanks.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return models.DefaultNoteTitle
	}
	return t
}

func today(now func() time.Time) string {
	return now().Format(models.NoteDateLayout)
}

func filterByTitle(notes []models.Note, query string) []models.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return notes
	}
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) {
			out = append(out, n)
		}
	}
	return out
}

// lastN returns the final n notes, newest first.
func lastN(notes []models.Note, n int) []models.Note {
	if n <= 0 || len(notes) == 0 {
		return []models.Note{}
	}
	start := max(len(notes)-n, 0)
	out := make([]models.Note, 0, len(notes)-start)
	for i := len(notes) - 1; i >= start; i-- {
		out = append(out, notes[i])
	}
	return out
}
