// Copyright (c) 2026 PMR Atlas. All rights reserved.

package seed_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/seed"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, documents []*document.Document)
	}{
		{
			name: "text_and_references",
			input: `
documents:
  - name: {en: Frozen Shoulder}
    sections:
      definition:
        en: Capsular **contracture**.
      references:
        en: [Codman EA. 1934., Neviaser JS. 1945.]
`,
			check: func(t *testing.T, documents []*document.Document) {
				require.Len(t, documents, 1)
				sections := documents[0].Sections
				assert.Equal(t, document.TextValue("Capsular **contracture**."), sections[document.SectionDefinition].Content[language.English])
				assert.Equal(t, []string{"Codman EA. 1934.", "Neviaser JS. 1945."}, sections[document.SectionReferences].Content[language.English].Entries)
			},
		},
		{
			name: "media",
			input: `
documents:
  - name: {en: Frozen Shoulder}
    media:
      imaging_findings:
        - {url: "https://cdn.example.org/mri.png", type: image, size_percent: 50, alignment: left}
`,
			check: func(t *testing.T, documents []*document.Document) {
				media := documents[0].Sections[document.SectionImagingFindings].Media
				require.Len(t, media, 1)
				assert.Equal(t, document.MediaImage, media[0].Kind)
				assert.Equal(t, 50, media[0].SizePercent)
			},
		},
		{name: "empty_file", input: "", check: func(t *testing.T, documents []*document.Document) { assert.Empty(t, documents) }},
		{name: "unknown_field", input: "documents:\n  - title: x\n", wantErr: true},
		{name: "mapping_value", input: "documents:\n  - sections:\n      definition:\n        en: {a: b}\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			documents, err := seed.Load(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, documents)
		})
	}
}

/*
TestRun_FixtureFile seeds the shipped fixture file twice: the second run skips
every document.
*/
func TestRun_FixtureFile(t *testing.T) {
	file, err := os.Open("../../data/seed/documents.yaml")
	require.NoError(t, err)
	defer file.Close()

	documents, err := seed.Load(file)
	require.NoError(t, err)
	require.NotEmpty(t, documents)

	repository := document.NewMemoryRepository()
	service := document.NewService(repository, translation.NewOrchestrator(translation.Unavailable{}, nil, 1, discardLogger()), discardLogger())

	result, err := seed.Run(context.Background(), service, documents, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Created: len(documents)}, result)

	stored, err := service.GetDocument(context.Background(), "0190f0a4-7c1e-7b7a-9a51-3b1f9a2c0d11")
	require.NoError(t, err)
	assert.Equal(t, "Epicondilite Lateral", stored.Name[language.Portuguese])
	assert.Len(t, stored.Sections[document.SectionReferences].Content[language.English].Entries, 2)

	again, err := seed.Load(strings.NewReader("documents:\n  - id: 0190f0a4-7c1e-7b7a-9a51-3b1f9a2c0d11\n    name: {en: Lateral Epicondylitis}\n"))
	require.NoError(t, err)
	result, err = seed.Run(context.Background(), service, again, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Skipped: 1}, result)
}

func TestRun_StopsOnInvalidDocument(t *testing.T) {
	repository := document.NewMemoryRepository()
	service := document.NewService(repository, translation.NewOrchestrator(translation.Unavailable{}, nil, 1, discardLogger()), discardLogger())

	result, err := seed.Run(context.Background(), service, []*document.Document{{Name: map[language.Code]string{}}}, discardLogger())
	assert.Error(t, err)
	assert.Zero(t, result.Created)
}
