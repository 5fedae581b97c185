package app

import (
	"context"
	"fmt"
	"log/slog"

	"decoded-backend/internal/config"
	"decoded-backend/internal/database"
	"decoded-backend/internal/repository"
	"decoded-backend/internal/services"
)

// Deps bundles the runtime components shared by the server and the CLI.
type Deps struct {
	Config    *config.Config
	Log       *slog.Logger
	Gateway   *services.Gateway
	Notes     repository.NoteRepo
	Extractor *services.FileExtractService

	closers []func()
}

// BuildWith wires the backend, gateway and note store for a loaded config.
func BuildWith(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Deps, error) {
	d := &Deps{Config: cfg, Log: log}

	backend, err := buildBackend(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM backend: %w", err)
	}
	d.Gateway = services.NewGateway(backend, log)

	notes, err := d.buildNotes(ctx)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to initialize note store: %w", err)
	}
	d.Notes = notes
	d.Extractor = services.NewFileExtractService(cfg.MaxPDFPages)
	return d, nil
}

func buildBackend(cfg *config.Config, log *slog.Logger) (services.Backend, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		log.Info("using Gemini backend",
			"concurrent_requests", cfg.GeminiConcurrentReqs, "requests_per_minute", cfg.GeminiRequestsPerMin)
		return services.NewGeminiBackend(cfg.GeminiPreferredModels, cfg.GeminiConcurrentReqs,
			cfg.GeminiRequestsPerMin, cfg.GeminiTemperature, log), nil
	case config.ProviderOpenAI:
		log.Info("using OpenAI backend")
		return services.NewOpenAIBackend(cfg.OpenAIPreferredModels, cfg.OpenAIBaseURL, log), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: gemini, openai)", cfg.LLMProvider)
	}
}

func (d *Deps) buildNotes(ctx context.Context) (repository.NoteRepo, error) {
	switch d.Config.NotesStore {
	case config.StoreFile:
		d.Log.Info("using file note store", "path", d.Config.NotesFile)
		return repository.NewFileNoteRepo(d.Config.NotesFile, d.Log), nil
	case config.StorePostgres:
		pool, err := database.NewPostgresPool(ctx, d.Config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, pool.Close)
		if err := database.RunMigrations(ctx, pool, d.Log); err != nil {
			return nil, err
		}
		d.Log.Info("using Postgres note store")
		return repository.NewPostgresNoteRepo(pool), nil
	default:
		return nil, fmt.Errorf("invalid NOTES_STORE: %s (valid options: file, postgres)", d.Config.NotesStore)
	}
}

// Close releases connections opened by Build, newest first.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}
