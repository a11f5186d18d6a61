// Copyright (c) 2026 PMR Atlas. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carolinavmo/pmr-atlas/internal/api"
	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/editor"
	"github.com/carolinavmo/pmr-atlas/internal/platform/config"
	"github.com/carolinavmo/pmr-atlas/internal/platform/sec"
)

type tokenVerifier struct{}

func (tokenVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "admin" {
		return nil, errors.New("bad token")
	}
	return &sec.AuthClaims{UserID: "u-admin", Name: "Dr. Ana Reis", Role: string(sec.RoleAdmin)}, nil
}

type tagTranslator struct {
	fail map[language.Code]error
}

func (translator tagTranslator) Translate(_ context.Context, text string, _, target language.Code) (string, error) {
	if err := translator.fail[target]; err != nil {
		return "", err
	}
	return "<" + string(target) + "> " + text, nil
}

type harness struct {
	url string
	id  string
}

func newHarness(t *testing.T, translator translation.Translator) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repository := document.NewMemoryRepository()
	service := document.NewService(repository, translation.NewOrchestrator(translator, document.NewTranslationSource(repository), 2, logger), logger)

	created, err := service.CreateDocument(context.Background(), &document.Document{
		Name: map[language.Code]string{language.English: "Carpal Tunnel Syndrome"},
		Sections: map[document.SectionID]*document.Section{
			document.SectionDefinition: {Content: map[language.Code]document.Value{
				language.English: document.TextValue("Compression of the **median nerve**."),
			}},
			document.SectionReferences: {Content: map[language.Code]document.Value{
				language.English: document.ReferenceValue([]string{"Phalen GS. 1966."}),
			}},
		},
	})
	require.NoError(t, err)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{}, logger)
	context, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(context, &config.Config{ServerPort: "0", Environment: "development"}, logger, tokenVerifier{}, api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Documents:   document.NewHandler(service),
		Languages:   language.NewHandler(),
		Translation: translation.NewHandler(translator),
	})
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	return &harness{url: httpServer.URL + "/api/v1", id: created.ID}
}

// exec runs the CLI with stdin and returns stdout.
func (h *harness) exec(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	streams := &IO{In: strings.NewReader(stdin), Out: &out, Err: &errOut}
	err := run(append([]string{"--server", h.url, "--token", "admin"}, args...), streams)
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestShow(t *testing.T) {
	h := newHarness(t, tagTranslator{})

	out, err := h.exec(t, "", "show", h.id)
	require.NoError(t, err)
	assert.Contains(t, out, "Carpal Tunnel Syndrome  [en, version 1]")
	assert.Contains(t, out, "## Definition\nCompression of the median nerve.")
	assert.Contains(t, out, "1. Phalen GS. 1966.")

	out, err = h.exec(t, "", "--lang", "es", "show", h.id, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "(no Spanish content yet; showing English)")
	assert.Contains(t, out, "**median nerve**")
}

func TestEdit(t *testing.T) {
	h := newHarness(t, tagTranslator{})

	out, err := h.exec(t, "Compresión del **nervio mediano**.\n", "-l", "es", "edit", h.id, "definition", "-f", "-")
	require.NoError(t, err)
	assert.Equal(t, "saved definition [es], version 2\n", out)

	out, err = h.exec(t, "", "render", h.id, "definition", "-l", "es")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>nervio mediano</strong>")

	_, err = h.exec(t, "x", "edit", h.id, "anatomy", "-f", "-")
	assert.ErrorIs(t, err, document.ErrUnknownSection)
}

/*
TestTranslate checks the confirmation prompt: declining writes nothing,
accepting fans out, and a failed target is reported.
*/
func TestTranslate(t *testing.T) {
	h := newHarness(t, tagTranslator{fail: map[language.Code]error{language.Spanish: errors.New("quota exceeded")}})
	draft := writeFile(t, "Median nerve *entrapment*.\n")

	out, err := h.exec(t, "n\n", "translate", h.id, "definition", "-f", draft)
	require.NoError(t, err)
	assert.Contains(t, out, "Portuguese (Portugal), Spanish. Continue?")
	assert.Contains(t, out, "cancelled; nothing was saved")

	out, err = h.exec(t, "", "history", h.id)
	require.NoError(t, err)
	assert.Contains(t, out, "(0 entries)")

	out, err = h.exec(t, "y\n", "translate", h.id, "definition", "-f", draft)
	var partial *editor.PartialTranslationError
	require.ErrorAs(t, err, &partial)
	assert.Contains(t, out, "saved definition [en], version 2")
	assert.Contains(t, out, "pt: translated")
	assert.Contains(t, out, "es: failed")

	out, err = h.exec(t, "", "translate", h.id, "definition", "-f", draft, "--to", "pt", "--yes")
	require.NoError(t, err)
	assert.NotContains(t, out, "Continue?")
	assert.Contains(t, out, "version 3")

	out, err = h.exec(t, "", "-l", "pt", "show", h.id, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "<pt> Median nerve *entrapment*.")

	out, err = h.exec(t, "", "history", h.id, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "save_and_translate")
	assert.Contains(t, out, "page 1 of 2 (2 entries)")
}

func TestTranslateDocument(t *testing.T) {
	h := newHarness(t, tagTranslator{})

	out, err := h.exec(t, "", "-l", "pt", "translate-document", h.id)
	require.NoError(t, err)
	assert.Equal(t, "translated into Portuguese (Portugal), version 2\n", out)

	out, err = h.exec(t, "", "-l", "pt", "translate-document", h.id)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")

	_, err = h.exec(t, "", "-l", "xx", "translate-document", h.id)
	assert.ErrorIs(t, err, language.ErrUnsupported)
}
