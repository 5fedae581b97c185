package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"decoded-backend/internal/models"
)

func notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage saved notes",
	}
	cmd.AddCommand(notesListCmd(), notesShowCmd(), notesSaveCmd(), notesDeleteCmd())
	return cmd
}

func notesListCmd() *cobra.Command {
	var query string
	var recent int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, optionally filtered by title",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			var notes []models.Note
			if recent > 0 {
				notes, err = deps.Notes.Recent(cmd.Context(), recent)
			} else {
				notes, err = deps.Notes.Search(cmd.Context(), query)
			}
			if err != nil {
				return err
			}
			return writeNotes(cmd.OutOrStdout(), output, notes)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive title filter")
	cmd.Flags().IntVar(&recent, "recent", 0, "Show only the N most recent notes")
	return cmd
}

func notesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show TITLE",
		Short: "Print one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			note, err := deps.Notes.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("note %q: %w", args[0], err)
			}
			return writeNote(cmd.OutOrStdout(), output, note)
		},
	}
}

func notesSaveCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save TITLE",
		Short: "Create or replace a note; content comes from --file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if file != "" {
				content, err = os.ReadFile(file)
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("reading note content: %w", err)
			}

			deps, err := buildDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			note, err := deps.Notes.Save(cmd.Context(), args[0], strings.TrimRight(string(content), "\n"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %q (%s)\n", note.Title, note.Date)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read content from a file instead of stdin")
	return cmd
}

func notesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TITLE",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.Notes.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("note %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", args[0])
			return nil
		},
	}
}
