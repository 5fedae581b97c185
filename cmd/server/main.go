package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decoded-backend/internal/app"
	"decoded-backend/internal/config"
	"decoded-backend/internal/database"
	"decoded-backend/internal/handlers"
	"decoded-backend/internal/logger"
	"decoded-backend/internal/middleware"
	"decoded-backend/internal/router"
)

func main() {
	ctx := context.Background()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log.Info("starting DecodEd backend", "env", cfg.Env, "provider", cfg.LLMProvider, "notes_store", cfg.NotesStore)

	// ──── Step 2: Build Gateway and Note Store ────
	deps, err := app.BuildWith(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	log.Info("gateway and note store ready")

	// ──── Step 3: Rate Limiter (Redis when configured) ────
	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", "err", err)
			os.Exit(1)
		}
		defer client.Close()
		limiter = middleware.NewRedisLimiter(client, cfg.RateLimitPerMinute, time.Minute)
		log.Info("redis rate limiter enabled", "per_minute", cfg.RateLimitPerMinute)
	} else {
		mem := middleware.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)
		defer mem.Close()
		limiter = mem
		log.Info("in-memory rate limiter enabled", "per_minute", cfg.RateLimitPerMinute)
	}

	// ──── Step 4: Initialize Handlers ────
	generateHandler := handlers.NewGenerateHandler(deps.Gateway, deps.Notes, cfg.GenerationTimeout, log)
	noteHandler := handlers.NewNoteHandler(deps.Notes, log)
	extractHandler := handlers.NewExtractHandler(deps.Extractor, cfg.MaxUploadBytes, log)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(log, generateHandler, noteHandler, extractHandler, limiter, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown incomplete", "err", err)
		}
	}()

	log.Info("DecodEd backend ready", "addr", "http://localhost:"+cfg.Port, "api", "/api/v1")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("server error", "err", err)
		deps.Close()
		os.Exit(1)
	}
	<-done
}
