package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultOpenAIModels is the selection order for OpenAI: mini tier, then full tier.
var DefaultOpenAIModels = []string{
	"gpt-4o-mini",
	"gpt-4.1-mini",
	"gpt-4o",
	"gpt-4.1",
}

const defaultOpenAITemperature = 0.3

var (
	chatModelPrefixes = []string{"gpt-", "chatgpt-", "o1", "o3", "o4"}
	// variants that are listed under chat prefixes but do not accept plain
	// chat completion requests
	nonChatMarkers = []string{"audio", "realtime", "tts", "transcribe", "search", "image", "instruct"}
)

// OpenAIBackend calls the OpenAI Models and Chat Completions APIs.
type OpenAIBackend struct {
	preferred []string
	baseURL   string
	logger    *slog.Logger
}

func NewOpenAIBackend(preferred []string, baseURL string, logger *slog.Logger) *OpenAIBackend {
	if len(preferred) == 0 {
		preferred = DefaultOpenAIModels
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIBackend{preferred: preferred, baseURL: baseURL, logger: logger}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) PreferredModels() []string { return b.preferred }

func (b *OpenAIBackend) newClient(credential string) openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(credential)}
	if b.baseURL != "" {
		opts = append(opts, option.WithBaseURL(b.baseURL))
	}
	return openai.NewClient(opts...)
}

func (b *OpenAIBackend) ListCapableBackends(ctx context.Context, credential string) ([]string, error) {
	client := b.newClient(credential)

	var ids []string
	iter := client.Models.ListAutoPaging(ctx)
	for iter.Next() {
		m := iter.Current()
		if isChatModel(m.ID) {
			ids = append(ids, m.ID)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing OpenAI models: %w", err)
	}
	return ids, nil
}

func isChatModel(id string) bool {
	chat := false
	for _, p := range chatModelPrefixes {
		if strings.HasPrefix(id, p) {
			chat = true
			break
		}
	}
	if !chat {
		return false
	}
	for _, marker := range nonChatMarkers {
		if strings.Contains(id, marker) {
			return false
		}
	}
	return true
}

func (b *OpenAIBackend) GenerateContent(ctx context.Context, credential, backendID, prompt string) (string, error) {
	client := b.newClient(credential)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(backendID),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(defaultOpenAITemperature),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: no choices returned")
	}
	if reason := resp.Choices[0].FinishReason; reason != "stop" {
		b.logger.WarnContext(ctx, "OpenAI choice stopped early", "finish_reason", reason, "model", backendID)
	}
	return resp.Choices[0].Message.Content, nil
}
