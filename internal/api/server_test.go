// Copyright (c) 2026 PMR Atlas. All rights reserved.

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carolinavmo/pmr-atlas/internal/api"
	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/platform/config"
	"github.com/carolinavmo/pmr-atlas/internal/platform/sec"
)

type denyAll struct{}

func (denyAll) VerifyToken(string) (*sec.AuthClaims, error) {
	return nil, errors.New("no tokens in this test")
}

func newServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repository := document.NewMemoryRepository()
	orchestrator := translation.NewOrchestrator(translation.Unavailable{}, document.NewTranslationSource(repository), 1, logger)
	liveness, readiness := api.NewHealthHandlers(deps, logger)

	context, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(context, &config.Config{ServerPort: "0", Environment: "development"}, logger, denyAll{}, api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Documents:   document.NewHandler(document.NewService(repository, orchestrator, logger)),
		Languages:   language.NewHandler(),
		Translation: translation.NewHandler(translation.Unavailable{}),
	})
	return server.Handler()
}

/*
TestServer_Routes checks that every domain router is mounted under /api/v1.
*/
func TestServer_Routes(t *testing.T) {
	handler := newServer(t, api.HealthDependencies{})

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"languages", http.MethodGet, "/api/v1/languages", http.StatusOK},
		{"language", http.MethodGet, "/api/v1/languages/pt", http.StatusOK},
		{"missing_document", http.MethodGet, "/api/v1/documents/0190f0a4-7c1e-7b7a-9a51-3b1f9a2c0d11", http.StatusNotFound},
		{"translate_requires_auth", http.MethodPost, "/api/v1/translate", http.StatusUnauthorized},
		{"unknown", http.MethodGet, "/api/v1/comics", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, recorder.Code)
			assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
		})
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name     string
		deps     api.HealthDependencies
		want     int
		contains string
	}{
		{"no_dependencies", api.HealthDependencies{}, http.StatusOK, `"status":"ready"`},
		{"database_up", api.HealthDependencies{CheckDatabase: func() error { return nil }, Translator: true}, http.StatusOK, `"name":"postgres","ok":true`},
		{"cache_down", api.HealthDependencies{CheckCache: func() error { return errors.New("dial tcp: refused") }}, http.StatusServiceUnavailable, `"status":"degraded"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			newServer(t, tt.deps).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

			require.Equal(t, tt.want, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.contains)
		})
	}
}
