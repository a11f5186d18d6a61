// Copyright (c) 2026 PMR Atlas. All rights reserved.

package client_test

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
	"github.com/carolinavmo/pmr-atlas/internal/client"
	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/editor"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
	"github.com/carolinavmo/pmr-atlas/internal/platform/config"
	"github.com/carolinavmo/pmr-atlas/internal/platform/sec"
)

var errQuota = errors.New("quota exceeded")

type stubVerifier map[string]*sec.AuthClaims

func (verifier stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, ok := verifier[token]; ok {
		return claims, nil
	}
	return nil, errors.New("bad token")
}

type suffixTranslator struct {
	fail map[language.Code]error
}

func (translator suffixTranslator) Translate(_ context.Context, text string, _, target language.Code) (string, error) {
	if err := translator.fail[target]; err != nil {
		return "", err
	}
	return text + " (" + string(target) + ")", nil
}

// newServer runs the full API over the in-memory store and returns the base
// URL and the id of a seeded document.
func newServer(t *testing.T, translator translation.Translator) (string, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repository := document.NewMemoryRepository()
	orchestrator := translation.NewOrchestrator(translator, document.NewTranslationSource(repository), 2, logger)
	service := document.NewService(repository, orchestrator, logger)

	created, err := service.CreateDocument(context.Background(), &document.Document{
		Name: map[language.Code]string{language.English: "Plantar Fasciitis"},
		Sections: map[document.SectionID]*document.Section{
			document.SectionDefinition: {Content: map[language.Code]document.Value{
				language.English: document.TextValue("Heel pain at the **plantar fascia** origin."),
			}},
		},
	})
	require.NoError(t, err)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{}, logger)
	verifier := stubVerifier{
		"admin-token":  {UserID: "u-admin", Name: "Dr. Inês Lopes", Role: string(sec.RoleAdmin)},
		"viewer-token": {UserID: "u-viewer", Role: string(sec.RoleViewer)},
	}

	context, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(context, &config.Config{ServerPort: "0", Environment: "development"}, logger, verifier, api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Documents:   document.NewHandler(service),
		Languages:   language.NewHandler(),
		Translation: translation.NewHandler(translator),
	})

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return httpServer.URL + "/api/v1", created.ID
}

func TestClient_Documents(t *testing.T) {
	baseURL, id := newServer(t, suffixTranslator{fail: map[language.Code]error{language.Spanish: errQuota}})
	c := client.New(baseURL, client.WithToken("admin-token"))
	ctx := context.Background()

	fetched, err := c.FetchDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Plantar Fasciitis", fetched.Name[language.English])
	assert.Equal(t, 1, fetched.Version)

	saved, err := c.SaveSection(ctx, id, document.SaveSectionInput{
		Language:  "pt",
		SectionID: "definition",
		Content:   document.TextValue("Dor no calcanhar."),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)
	assert.Equal(t, "Dor no calcanhar.", saved.Sections[document.SectionDefinition].Content[language.Portuguese].Text)

	result, err := c.SaveAndTranslate(ctx, id, document.SaveAndTranslateInput{
		SourceLanguage:  "en",
		SectionID:       "references",
		Content:         document.ReferenceValue([]string{"Riddle DL. 2004."}),
		TargetLanguages: []string{"pt", "es"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TranslationsCount)
	require.Len(t, result.Outcomes, 2)
	assert.True(t, result.Outcomes[0].OK())
	assert.False(t, result.Outcomes[1].OK())
	assert.Equal(t, []string{"Riddle DL. 2004. (pt)"}, result.Document.Sections[document.SectionReferences].Content[language.Portuguese].Entries)

	media, err := c.SetSectionMedia(ctx, id, document.SectionMediaInput{
		SectionID: "imaging_findings",
		Media:     []document.MediaItem{{URL: "https://cdn.example.org/us.png", Kind: document.MediaImage}},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, media.Sections[document.SectionImagingFindings].Media[0].SizePercent)

	rendered, err := c.RenderSection(ctx, id, document.SectionDefinition, language.Spanish)
	require.NoError(t, err)
	assert.True(t, rendered.Fallback)
	assert.Contains(t, rendered.HTML, "<strong>plantar fascia</strong>")

	versions, meta, err := c.ListVersions(ctx, id, 1, 2)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.Equal(t, 3, meta.Total)
	assert.True(t, meta.HasMore)
	assert.Equal(t, document.EditSectionMedia, versions[0].EditType)
}

func TestClient_Errors(t *testing.T) {
	baseURL, id := newServer(t, suffixTranslator{})
	ctx := context.Background()

	tests := []struct {
		name     string
		token    string
		call     func(*client.Client) error
		wantCode string
		status   int
	}{
		{"not_found", "", func(c *client.Client) error {
			_, err := c.FetchDocument(ctx, "0190f0a4-0000-7000-8000-000000000000")
			return err
		}, "NOT_FOUND", http.StatusNotFound},
		{"anonymous_write", "", func(c *client.Client) error {
			_, err := c.SaveSection(ctx, id, document.SaveSectionInput{Language: "en", SectionID: "definition", Content: document.TextValue("x")})
			return err
		}, "UNAUTHORIZED", http.StatusUnauthorized},
		{"viewer_write", "viewer-token", func(c *client.Client) error {
			_, err := c.SaveSection(ctx, id, document.SaveSectionInput{Language: "en", SectionID: "definition", Content: document.TextValue("x")})
			return err
		}, "FORBIDDEN", http.StatusForbidden},
		{"validation", "admin-token", func(c *client.Client) error {
			_, err := c.SaveSection(ctx, id, document.SaveSectionInput{Language: "fr", SectionID: "definition", Content: document.TextValue("x")})
			return err
		}, "VALIDATION_ERROR", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(client.New(baseURL, client.WithToken(tt.token)))

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, tt.wantCode, appError.Code)
			assert.Equal(t, tt.status, appError.HTTPStatus)
		})
	}
}

func TestClient_NonEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "upstream timed out", http.StatusGatewayTimeout)
	}))
	defer server.Close()

	_, err := client.New(server.URL).FetchDocument(context.Background(), "x")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "INTERNAL_ERROR", appError.Code)
	assert.Equal(t, http.StatusGatewayTimeout, appError.HTTPStatus)
	assert.Equal(t, "upstream timed out", appError.Message)
}

func TestClient_Translate(t *testing.T) {
	baseURL, _ := newServer(t, suffixTranslator{})

	got, err := client.New(baseURL, client.WithToken("admin-token")).Translate(context.Background(), "Heel pain", language.English, language.Spanish)
	require.NoError(t, err)
	assert.Equal(t, "Heel pain (es)", got)
}

/*
TestClient_DrivesController runs an edit session end to end over HTTP.
*/
func TestClient_DrivesController(t *testing.T) {
	baseURL, id := newServer(t, suffixTranslator{})
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	controller := editor.NewController(client.New(baseURL, client.WithToken("admin-token")), id, language.English, logger)
	require.NoError(t, controller.Load(ctx))

	require.NoError(t, controller.StartEdit(document.SectionDefinition))
	require.NoError(t, controller.SetDraft("Heel pain at the *calcaneal* origin."))
	require.NoError(t, controller.RequestTranslation(language.Portuguese))

	outcomes, err := controller.ConfirmTranslation(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].OK())

	doc := controller.Document()
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, "Heel pain at the *calcaneal* origin. (pt)", doc.Sections[document.SectionDefinition].Content[language.Portuguese].Text)
	assert.NoError(t, controller.LastError())
}
