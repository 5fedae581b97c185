package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"decoded-backend/internal/models"
)

// PostgresNoteRepo stores notes in the notes table. The serial id keeps
// first-save order across upserts.
type PostgresNoteRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresNoteRepo(pool *pgxpool.Pool) *PostgresNoteRepo {
	return &PostgresNoteRepo{pool: pool, now: time.Now}
}

func (r *PostgresNoteRepo) query(ctx context.Context, sql string, args ...any) ([]models.Note, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.Title, &n.Content, &n.Date); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *PostgresNoteRepo) List(ctx context.Context) ([]models.Note, error) {
	return r.query(ctx, `SELECT title, content, note_date FROM notes ORDER BY id ASC`)
}

func (r *PostgresNoteRepo) Search(ctx context.Context, query string) ([]models.Note, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return r.List(ctx)
	}
	return r.query(ctx,
		`SELECT title, content, note_date FROM notes WHERE STRPOS(LOWER(title), LOWER($1)) > 0 ORDER BY id ASC`, q)
}

func (r *PostgresNoteRepo) Recent(ctx context.Context, n int) ([]models.Note, error) {
	if n <= 0 {
		return []models.Note{}, nil
	}
	return r.query(ctx, `SELECT title, content, note_date FROM notes ORDER BY id DESC LIMIT $1`, n)
}

func (r *PostgresNoteRepo) Get(ctx context.Context, title string) (*models.Note, error) {
	n := &models.Note{}
	err := r.pool.QueryRow(ctx, `SELECT title, content, note_date FROM notes WHERE title = $1`,
		NormalizeTitle(title)).Scan(&n.Title, &n.Content, &n.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

func (r *PostgresNoteRepo) Save(ctx context.Context, title, content string) (*models.Note, error) {
	note := &models.Note{Title: NormalizeTitle(title), Content: content, Date: today(r.now)}

	query := `INSERT INTO notes (title, content, note_date) VALUES ($1, $2, $3)
		ON CONFLICT (title) DO UPDATE SET content = EXCLUDED.content, note_date = EXCLUDED.note_date, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, note.Title, note.Content, note.Date); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return note, nil
}

func (r *PostgresNoteRepo) Delete(ctx context.Context, title string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE title = $1`, title)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}
