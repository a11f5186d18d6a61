// Copyright (c) 2026 PMR Atlas. All rights reserved.

package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
)

const systemPrompt = `You are a professional medical translator for a physical medicine and rehabilitation reference.
Translate the user's text from %s to %s.
Keep medical terminology precise and use the conventions of clinicians who speak the target language.
Keep every formatting marker exactly where it applies: **bold**, *italic*, __underline__, list markers and line breaks.
Output only the translation, with no preamble or notes.`

// AnthropicConfig configures [AnthropicTranslator].
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64

	// RequestsPerSecond paces calls to the API; zero or less disables pacing.
	RequestsPerSecond float64

	// BaseURL overrides the API endpoint. Empty uses the default.
	BaseURL string
}

// AnthropicTranslator translates text with a Claude model.
type AnthropicTranslator struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	logger    *slog.Logger
}

/*
NewAnthropicTranslator creates a translator backed by the Messages API.

Description: SDK retries are disabled; a failed call surfaces immediately as
a failed target.

Returns:
  - *AnthropicTranslator
  - error: If the API key or model is missing
*/
func NewAnthropicTranslator(config AnthropicConfig, logger *slog.Logger) (*AnthropicTranslator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("translation: anthropic API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("translation: model is required")
	}

	options := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}
	client := anthropic.NewClient(options...)

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &AnthropicTranslator{
		client:    &client,
		model:     config.Model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}, nil
}

// Translate sends one piece of text to the model and returns its translation.
func (translator *AnthropicTranslator) Translate(context context.Context, text string, source, target language.Code) (string, error) {
	if err := translator.limiter.Wait(context); err != nil {
		return "", apperr.BadGateway("Translation was cancelled", err)
	}

	started := time.Now()
	message, err := translator.client.Messages.New(context, anthropic.MessageNewParams{
		Model:     anthropic.Model(translator.model),
		MaxTokens: translator.maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: fmt.Sprintf(systemPrompt, language.Name(source), language.Name(target))},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", apperr.BadGateway("Translation service failed", err)
	}

	var builder strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	translated := strings.TrimSpace(builder.String())
	if translated == "" {
		return "", apperr.BadGateway("Translation service returned no text", nil)
	}

	translator.logger.Debug("translation_call_completed",
		slog.String("source", string(source)),
		slog.String("target", string(target)),
		slog.Int("chars", len(text)),
		slog.Int64("output_tokens", message.Usage.OutputTokens),
		slog.Duration("duration", time.Since(started)),
	)
	return translated, nil
}
