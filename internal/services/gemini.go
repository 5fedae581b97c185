package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultGeminiModels is the selection order for Gemini: flash tier, then pro tier.
var DefaultGeminiModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-2.0-flash",
	"gemini-2.5-flash",
	"gemini-pro",
	"gemini-1.5-pro",
	"gemini-2.5-pro",
}

const generateContentMethod = "generateContent"

type GeminiBackend struct {
	preferred   []string
	temperature float32
	logger      *slog.Logger
	rateChan    chan struct{} // Token bucket
	pacer       *rate.Limiter // nil when requests per minute is unlimited
}

// NewGeminiBackend bounds generation calls to concurrentReqs in flight and,
// when requestsPerMin is positive, paces them to that rate.
func NewGeminiBackend(preferred []string, concurrentReqs, requestsPerMin int, temperature float32, logger *slog.Logger) *GeminiBackend {
	if len(preferred) == 0 {
		preferred = DefaultGeminiModels
	}
	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Token bucket bounding in-flight upstream requests
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	var pacer *rate.Limiter
	if requestsPerMin > 0 {
		pacer = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMin)), concurrentReqs)
	}

	return &GeminiBackend{
		preferred:   preferred,
		temperature: temperature,
		logger:      logger,
		rateChan:    rateChan,
		pacer:       pacer,
	}
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) PreferredModels() []string { return b.preferred }

// acquireRate blocks until a rate slot is available or ctx is done.
func (b *GeminiBackend) acquireRate(ctx context.Context) error {
	if b.pacer != nil {
		if err := b.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}
	select {
	case <-b.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *GeminiBackend) releaseRate() {
	b.rateChan <- struct{}{}
}

func (b *GeminiBackend) newClient(ctx context.Context, credential string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(credential))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// ListCapableBackends lists models that support generateContent. Names are
// returned without the "models/" prefix.
func (b *GeminiBackend) ListCapableBackends(ctx context.Context, credential string) ([]string, error) {
	client, err := b.newClient(ctx, credential)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var ids []string
	it := client.ListModels(ctx)
	for {
		m, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing Gemini models: %w", err)
		}
		if !slices.Contains(m.SupportedGenerationMethods, generateContentMethod) {
			continue
		}
		ids = append(ids, strings.TrimPrefix(m.Name, "models/"))
	}
	return ids, nil
}

func (b *GeminiBackend) GenerateContent(ctx context.Context, credential, backendID, prompt string) (string, error) {
	if err := b.acquireRate(ctx); err != nil {
		return "", err
	}
	defer b.releaseRate()

	client, err := b.newClient(ctx, credential)
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(backendID)
	model.SetTemperature(b.temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			b.logger.WarnContext(ctx, "Gemini candidate stopped early",
				"candidate", i, "finish_reason", cand.FinishReason, "model", backendID)
		}
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty text (the content may have been blocked by safety filters)")
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
