// Copyright (c) 2026 PMR Atlas. All rights reserved.

package translation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
)

const messageResponse = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-haiku-4-5-20251001",
	"content": [{"type": "text", "text": "  Epicondilite **lateral**\n"}],
	"stop_reason": "end_turn",
	"stop_sequence": null,
	"usage": {"input_tokens": 40, "output_tokens": 6}
}`

type capturedRequest struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func newTranslator(t *testing.T, handler http.HandlerFunc) *translation.AnthropicTranslator {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	translator, err := translation.NewAnthropicTranslator(translation.AnthropicConfig{
		APIKey:    "test-key",
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 1024,
		BaseURL:   server.URL + "/",
	}, discardLogger())
	require.NoError(t, err)
	return translator
}

func TestAnthropicTranslator_Translate(t *testing.T) {
	var captured capturedRequest
	translator := newTranslator(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/v1/messages", request.URL.Path)
		assert.Equal(t, "test-key", request.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(request.Body).Decode(&captured))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(messageResponse))
	})

	got, err := translator.Translate(context.Background(), "Lateral **epicondylitis**", language.English, language.Portuguese)
	require.NoError(t, err)
	assert.Equal(t, "Epicondilite **lateral**", got)

	assert.Equal(t, "claude-haiku-4-5-20251001", captured.Model)
	assert.Equal(t, int64(1024), captured.MaxTokens)
	require.Len(t, captured.System, 1)
	assert.Contains(t, captured.System[0].Text, "from English to Portuguese (Portugal)")
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "Lateral **epicondylitis**", captured.Messages[0].Content[0].Text)
}

func TestAnthropicTranslator_FailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	translator := newTranslator(t, func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusInternalServerError)
		_, _ = writer.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`))
	})

	_, err := translator.Translate(context.Background(), "text", language.English, language.Spanish)
	assert.True(t, apperr.HasCode(err, "UPSTREAM_FAILURE"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewAnthropicTranslator_RequiresKey(t *testing.T) {
	_, err := translation.NewAnthropicTranslator(translation.AnthropicConfig{Model: "m"}, discardLogger())
	assert.Error(t, err)
}

func TestUnavailable(t *testing.T) {
	_, err := translation.Unavailable{}.Translate(context.Background(), "x", language.English, language.Spanish)
	assert.ErrorIs(t, err, translation.ErrNotConfigured)
}
