package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"decoded-backend/internal/models"
)

// encode writes v as json or yaml. It reports false for the text format so
// callers can render their own.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	case "text", "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func writeResult(w io.Writer, format string, r *models.GenerationResult) error {
	if done, err := encode(w, format, r); done {
		return err
	}

	switch r.Mode {
	case models.ModeQuiz:
		for i, q := range r.Quiz {
			if q.Error != "" {
				fmt.Fprintln(w, q.Error)
				continue
			}
			fmt.Fprintf(w, "%d. %s\n", i+1, q.Question)
			for j, opt := range q.Options {
				fmt.Fprintf(w, "   %c) %s\n", 'a'+j, opt)
			}
			fmt.Fprintf(w, "   answer: %s\n\n", q.Answer)
		}
	case models.ModeFlashcards:
		for i, c := range r.Flashcards {
			if c.Error != "" {
				fmt.Fprintln(w, c.Error)
				continue
			}
			fmt.Fprintf(w, "[%d] %s\n    %s\n\n", i+1, c.Front, c.Back)
		}
	default:
		fmt.Fprintln(w, r.Text)
	}
	return nil
}

func writeCapability(w io.Writer, format string, c *models.Capability) error {
	if done, err := encode(w, format, c); done {
		return err
	}
	fmt.Fprintf(w, "provider: %s\nselected: %s\n", c.Provider, c.Selected)
	for _, id := range c.Backends {
		marker := " "
		if id == c.Selected {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %s\n", marker, id)
	}
	return nil
}

func writeNotes(w io.Writer, format string, notes []models.Note) error {
	if done, err := encode(w, format, notes); done {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(w, "no notes")
		return nil
	}
	for _, n := range notes {
		fmt.Fprintf(w, "%s  %s\n", n.Date, n.Title)
	}
	return nil
}

func writeNote(w io.Writer, format string, n *models.Note) error {
	if done, err := encode(w, format, n); done {
		return err
	}
	fmt.Fprintf(w, "# %s (%s)\n\n%s\n", n.Title, n.Date, n.Content)
	return nil
}
