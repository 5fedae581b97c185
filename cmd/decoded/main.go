package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"decoded-backend/internal/app"
	"decoded-backend/internal/config"
	"decoded-backend/internal/logger"
)

const apiKeyEnv = "DECODED_API_KEY"

var (
	apiKey   string
	output   string
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "decoded",
		Short:         "Study aid: summaries, quizzes and flashcards from your notes",
		Long:          "Turns notes, text files and PDFs into a Markdown summary, a 10-question quiz or a flashcard deck using your own LLM API key.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "LLM provider API key (default: $"+apiKeyEnv+")")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr")

	rootCmd.AddCommand(
		generateCmd(),
		backendsCmd(),
		notesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildDeps wires the same components as the server, logging to stderr so
// stdout carries only command output.
func buildDeps(ctx context.Context) (*app.Deps, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.BuildWith(ctx, cfg, logger.NewWithWriter(os.Stderr, logLevel))
}

func credential() string {
	if apiKey != "" {
		return apiKey
	}
	return os.Getenv(apiKeyEnv)
}
