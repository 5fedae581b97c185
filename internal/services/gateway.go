package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"decoded-backend/internal/models"
)

var tracer = otel.Tracer("decoded-backend/internal/services")

// discoveryTimeout bounds one shared capability query.
const discoveryTimeout = 30 * time.Second

// Backend is the external generation service as seen by the gateway.
type Backend interface {
	// Name identifies the provider, e.g. "gemini".
	Name() string
	// ListCapableBackends returns the model identifiers the credential may
	// use for content generation, in the order the service returned them.
	ListCapableBackends(ctx context.Context, credential string) ([]string, error)
	// GenerateContent runs one non-streaming generation and returns the reply text.
	GenerateContent(ctx context.Context, credential, backendID, prompt string) (string, error)
	// PreferredModels lists identifiers in selection order: fast tier first,
	// then standard tier.
	PreferredModels() []string
}

// Gateway validates requests, discovers and caches the model to use for
// each credential, dispatches the prompt and parses the reply.
type Gateway struct {
	backend Backend
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]*models.Capability
	group singleflight.Group
}

func NewGateway(backend Backend, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		backend: backend,
		logger:  logger,
		cache:   make(map[string]*models.Capability),
	}
}

// Generate converts sourceText into the artifact for mode. Failures are
// returned as *GenerationError; an unparseable structured reply is not a
// failure but an error-flagged result (see models.GenerationResult.Malformed).
// There is no internal timeout; ctx bounds the whole call.
func (g *Gateway) Generate(ctx context.Context, credential, sourceText string, mode models.Mode) (*models.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "decoded.generate",
		trace.WithAttributes(attribute.String("decoded.mode", mode.String())))
	defer span.End()

	result, err := g.generate(ctx, credential, sourceText, mode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
		return nil, err
	}
	span.SetAttributes(attribute.String("decoded.backend", result.Backend))
	if _, bad := result.Malformed(); bad {
		span.SetAttributes(attribute.String("decoded.reply", string(KindMalformedReply)))
	}
	return result, nil
}

func (g *Gateway) generate(ctx context.Context, credential, sourceText string, mode models.Mode) (*models.GenerationResult, error) {
	if mode.IsZero() {
		return nil, ErrInvalidMode
	}
	if strings.TrimSpace(credential) == "" {
		return nil, newGenerationError(KindMissingCredential, "API key is missing. Please check Settings.", nil)
	}
	if strings.TrimSpace(sourceText) == "" {
		return nil, newGenerationError(KindEmptyInput, "Input text is empty.", nil)
	}

	capability, err := g.Discover(ctx, credential)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(mode, sourceText)
	g.logger.DebugContext(ctx, "dispatching generation",
		"provider", capability.Provider,
		"backend", capability.Selected,
		"mode", mode.String(),
		"prompt_length", len(prompt))

	reply, err := g.backend.GenerateContent(ctx, credential, capability.Selected, prompt)
	if err != nil {
		g.logger.WarnContext(ctx, "generation failed",
			"backend", capability.Selected, "mode", mode.String(), "err", err)
		return nil, newGenerationError(KindGeneration, "generation request failed", err)
	}

	result, err := parseReply(mode, capability.Selected, reply)
	if err != nil {
		return nil, err
	}
	if detail, bad := result.Malformed(); bad {
		g.logger.WarnContext(ctx, "malformed structured reply",
			"backend", capability.Selected, "mode", mode.String(), "detail", detail)
	}
	return result, nil
}

// Discover returns the capability set and selected backend for credential,
// querying the service at most once per credential. Concurrent first callers
// wait for the same query. Failures are not cached.
//
// The shared query runs detached from any one caller's context and is bounded
// by discoveryTimeout. A caller whose own context ends first gets a
// GenerationError wrapping ctx.Err() while the query continues for the rest.
func (g *Gateway) Discover(ctx context.Context, credential string) (*models.Capability, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, newGenerationError(KindMissingCredential, "API key is missing. Please check Settings.", nil)
	}
	key := credentialKey(credential)

	g.mu.RLock()
	cached, ok := g.cache[key]
	g.mu.RUnlock()
	if ok {
		return cached, nil
	}

	ch := g.group.DoChan(key, func() (interface{}, error) {
		g.mu.RLock()
		cached, ok := g.cache[key]
		g.mu.RUnlock()
		if ok {
			return cached, nil
		}

		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discoveryTimeout)
		defer cancel()
		capability, err := g.discover(dctx, credential)
		if err != nil {
			return nil, err
		}

		g.mu.Lock()
		g.cache[key] = capability
		g.mu.Unlock()
		return capability, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Capability), nil
	case <-ctx.Done():
		return nil, newGenerationError(KindGeneration, "capability discovery interrupted", ctx.Err())
	}
}

func (g *Gateway) discover(ctx context.Context, credential string) (*models.Capability, error) {
	ctx, span := tracer.Start(ctx, "decoded.discover",
		trace.WithAttributes(attribute.String("decoded.provider", g.backend.Name())))
	defer span.End()

	ids, err := g.backend.ListCapableBackends(ctx, credential)
	if err != nil {
		kind, detail := KindAuthorization, "Invalid API key or connection failed"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			kind, detail = KindGeneration, "capability discovery timed out"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		g.logger.WarnContext(ctx, "capability discovery failed", "provider", g.backend.Name(), "err", err)
		return nil, newGenerationError(kind, detail, err)
	}
	if len(ids) == 0 {
		span.SetStatus(codes.Error, string(KindNoCapableBackend))
		return nil, newGenerationError(KindNoCapableBackend,
			fmt.Sprintf("no compatible %s models found for this API key", g.backend.Name()), nil)
	}

	selected := SelectBackend(ids, g.backend.PreferredModels())
	span.SetAttributes(
		attribute.Int("decoded.capable_backends", len(ids)),
		attribute.String("decoded.backend", selected))
	g.logger.InfoContext(ctx, "capability discovery complete",
		"provider", g.backend.Name(), "capable", len(ids), "selected", selected)

	return &models.Capability{
		Provider: g.backend.Name(),
		Backends: ids,
		Selected: selected,
	}, nil
}

// Forget drops the cached discovery for credential so the next call
// rediscovers. Used when a user rotates their key.
func (g *Gateway) Forget(credential string) {
	key := credentialKey(credential)
	g.mu.Lock()
	delete(g.cache, key)
	g.mu.Unlock()
	g.group.Forget(key)
}

// SelectBackend picks the first preferred identifier present in available,
// falling back to the first available identifier in service order.
// available must be non-empty.
func SelectBackend(available, preferred []string) string {
	present := make(map[string]struct{}, len(available))
	for _, id := range available {
		present[id] = struct{}{}
	}
	for _, want := range preferred {
		if _, ok := present[want]; ok {
			return want
		}
	}
	return available[0]
}

func credentialKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}
