// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package client is the HTTP client of the content API.

It speaks the same JSON envelopes the server writes through package respond:
{"data": ...} on success and {"error", "code", "details"} on failure. Error
envelopes come back as [*apperr.AppError] so callers branch on the same codes
as the server. [*Client] satisfies [editor.Backend].
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
	"github.com/carolinavmo/pmr-atlas/internal/platform/constants"
	"github.com/carolinavmo/pmr-atlas/internal/platform/respond"
	"github.com/carolinavmo/pmr-atlas/pkg/pagination"
)

// maxResponseBytes bounds decoded response bodies.
const maxResponseBytes = 8 << 20

// Client calls the content API rooted at BaseURL (e.g. http://localhost:8080/api/v1).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(client *Client) { client.token = strings.TrimSpace(token) }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) { client.httpClient = httpClient }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) { client.logger = logger }
}

// New creates a client. The default HTTP client allows translation routes
// their full server-side deadline.
func New(baseURL string, options ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: constants.TranslationRequestTimeout + 10*time.Second},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// # Documents

func (client *Client) FetchDocument(context context.Context, id string) (*document.Document, error) {
	var out document.Document
	if err := client.do(context, http.MethodGet, documentPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (client *Client) SaveSection(context context.Context, id string, input document.SaveSectionInput) (*document.Document, error) {
	var out document.Document
	if err := client.do(context, http.MethodPut, documentPath(id, "inline-save"), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (client *Client) SaveAndTranslate(context context.Context, id string, input document.SaveAndTranslateInput) (*document.TranslationResult, error) {
	var out document.TranslationResult
	if err := client.do(context, http.MethodPut, documentPath(id, "inline-save-translate"), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (client *Client) SetSectionMedia(context context.Context, id string, input document.SectionMediaInput) (*document.Document, error) {
	var out document.Document
	if err := client.do(context, http.MethodPut, documentPath(id, "section-media"), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (client *Client) TranslateDocument(context context.Context, id string, input document.TranslateDocumentInput) (*document.DocumentTranslationResult, error) {
	var out document.DocumentTranslationResult
	if err := client.do(context, http.MethodPost, documentPath(id, "translate"), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

/*
RenderSection fetches the read-only HTML of a section.

Parameters:
  - id: Document id
  - section: Section id
  - lang: Display language; empty lets the server pick the base language
*/
func (client *Client) RenderSection(context context.Context, id string, section document.SectionID, lang language.Code) (*document.RenderedSection, error) {
	path := documentPath(id, "sections", string(section), "render")
	if lang != "" {
		path += "?" + url.Values{"lang": {string(lang)}}.Encode()
	}

	var out document.RenderedSection
	if err := client.do(context, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVersions returns one page of the edit history, newest first.
func (client *Client) ListVersions(context context.Context, id string, page, limit int) ([]*document.Version, pagination.Meta, error) {
	query := url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}

	var envelope struct {
		Data []*document.Version `json:"data"`
		Meta pagination.Meta     `json:"meta"`
	}
	if err := client.send(context, http.MethodGet, documentPath(id, "versions")+"?"+query.Encode(), nil, &envelope); err != nil {
		return nil, pagination.Meta{}, err
	}
	return envelope.Data, envelope.Meta, nil
}

// # Translation

// Translate runs an ad-hoc translation of text.
func (client *Client) Translate(context context.Context, text string, source, target language.Code) (string, error) {
	var out translation.TextResponse
	input := translation.TextRequest{Text: text, SourceLanguage: string(source), TargetLanguage: string(target)}
	if err := client.do(context, http.MethodPost, "/translate", input, &out); err != nil {
		return "", err
	}
	return out.TranslatedText, nil
}

// # Transport

// do sends a request and decodes the "data" member of the success envelope.
func (client *Client) do(context context.Context, method, path string, body, out any) error {
	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	return client.send(context, method, path, body, &envelope)
}

func (client *Client) send(context context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(context, method, client.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if client.token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+client.token)
	}

	start := time.Now()
	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	client.logger.Debug("api_call_completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", response.StatusCode),
		slog.String("request_id", response.Header.Get(constants.HeaderXRequestID)),
		slog.Duration("duration", time.Since(start)),
	)

	limited := io.LimitReader(response.Body, maxResponseBytes)
	if response.StatusCode >= http.StatusBadRequest {
		return decodeError(response.StatusCode, limited)
	}
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// decodeError turns an error envelope into an AppError. Bodies that are not
// envelopes (proxies, timeouts) keep the status and carry the raw text.
func decodeError(status int, body io.Reader) error {
	raw, _ := io.ReadAll(body)

	var envelope respond.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error == "" {
		message := strings.TrimSpace(string(raw))
		if message == "" {
			message = http.StatusText(status)
		}
		return apperr.FromEnvelope(status, "", message, nil)
	}
	return apperr.FromEnvelope(status, envelope.Code, envelope.Error, envelope.Details)
}

func documentPath(id string, parts ...string) string {
	segments := append([]string{"/documents", url.PathEscape(id)}, parts...)
	return strings.Join(segments, "/")
}
