package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoded-backend/internal/models"
)

func newFakeOpenAI(t *testing.T, chatReply string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-key" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"object":"list","data":[
			{"id":"whisper-1","object":"model","created":1,"owned_by":"openai"},
			{"id":"gpt-4o","object":"model","created":1,"owned_by":"openai"},
			{"id":"gpt-4o-mini-tts","object":"model","created":1,"owned_by":"openai"},
			{"id":"gpt-4o-mini","object":"model","created":1,"owned_by":"openai"}
		]}`)
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		if assert.Len(t, body.Messages, 1) {
			assert.Equal(t, "user", body.Messages[0].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": chatReply},
			}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIsChatModel(t *testing.T) {
	tests := map[string]bool{
		"gpt-4o":                 true,
		"gpt-4.1-mini":           true,
		"o3-mini":                true,
		"chatgpt-4o-latest":      true,
		"gpt-4o-realtime":        false,
		"gpt-4o-mini-tts":        false,
		"gpt-3.5-turbo-instruct": false,
		"text-embedding-3-small": false,
		"dall-e-3":               false,
	}
	for id, want := range tests {
		assert.Equal(t, want, isChatModel(id), id)
	}
}

func TestOpenAIBackend_ThroughGateway(t *testing.T) {
	srv := newFakeOpenAI(t, "```json\n[{\"front\":\"ATP\",\"back\":\"Energy currency\"}]\n```")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := NewGateway(NewOpenAIBackend(nil, srv.URL+"/", log), log)

	capability, err := gw.Discover(context.Background(), "good-key")
	require.NoError(t, err)
	assert.Equal(t, "openai", capability.Provider)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, capability.Backends)
	assert.Equal(t, "gpt-4o-mini", capability.Selected)

	result, err := gw.Generate(context.Background(), "good-key", "Cells make ATP.", models.ModeFlashcards)
	require.NoError(t, err)
	require.Len(t, result.Flashcards, 1)
	assert.Equal(t, "ATP", result.Flashcards[0].Front)
}

func TestOpenAIBackend_BadKeyIsAuthorizationError(t *testing.T) {
	srv := newFakeOpenAI(t, "")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := NewGateway(NewOpenAIBackend(nil, srv.URL+"/", log), log)

	_, err := gw.Generate(context.Background(), "bad-key", "text", models.ModeSummary)
	assert.ErrorIs(t, err, ErrAuthorization)
}
