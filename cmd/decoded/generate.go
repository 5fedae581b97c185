package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"decoded-backend/internal/app"
	"decoded-backend/internal/handlers"
	"decoded-backend/internal/models"
	"decoded-backend/internal/repository"
)

func generateCmd() *cobra.Command {
	var (
		modeName string
		file     string
		note     string
		text     string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a summary, quiz or flashcards",
		Example: `  decoded generate --mode quiz --file lecture.pdf
  decoded generate --mode summary --note Biology --save -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := models.ParseMode(modeName)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			deps, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			source, err := readSource(ctx, deps, text, file, note)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, deps.Config.GenerationTimeout)
			defer cancel()

			result, err := deps.Gateway.Generate(ctx, credential(), source, mode)
			if err != nil {
				return err
			}

			if save && mode == models.ModeSummary {
				if err := saveSummary(cmd.Context(), deps, note, source, result.Text); err != nil {
					return err
				}
			}

			if detail, bad := result.Malformed(); bad {
				fmt.Fprintln(os.Stderr, "warning:", detail)
			}
			return writeResult(cmd.OutOrStdout(), output, result)
		},
	}

	cmd.Flags().StringVarP(&modeName, "mode", "m", "Summary", "Summary, Quiz or Flashcards")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read source from a PDF, TXT, MD or DOCX file")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Read source from a saved note")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Source text")
	cmd.Flags().BoolVar(&save, "save", false, "Append a generated summary to --note")
	cmd.MarkFlagsMutuallyExclusive("file", "text")

	return cmd
}

// readSource picks the source text: --text, then --file, then --note.
func readSource(ctx context.Context, deps *app.Deps, text, file, note string) (string, error) {
	switch {
	case text != "":
		return text, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		extraction, err := deps.Extractor.Extract(file, data)
		if err != nil {
			return "", err
		}
		return extraction.Text, nil
	case note != "":
		n, err := deps.Notes.Get(ctx, note)
		if err != nil {
			return "", fmt.Errorf("note %q: %w", note, err)
		}
		return n.Content, nil
	default:
		return "", fmt.Errorf("one of --text, --file or --note is required")
	}
}

// saveSummary appends summary to the note titled title, creating the note
// from source when it does not exist yet.
func saveSummary(ctx context.Context, deps *app.Deps, title, source, summary string) error {
	existing, err := deps.Notes.Get(ctx, title)
	if err != nil {
		if !errors.Is(err, repository.ErrNoteNotFound) {
			return fmt.Errorf("note %q: %w", title, err)
		}
		existing = nil
	}
	if _, err := deps.Notes.Save(ctx, title, handlers.SummaryNoteContent(existing, source, summary)); err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}

func backendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "Show the models your API key can use and which one is selected",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			capability, err := deps.Gateway.Discover(cmd.Context(), credential())
			if err != nil {
				return err
			}
			return writeCapability(cmd.OutOrStdout(), output, capability)
		},
	}
}
