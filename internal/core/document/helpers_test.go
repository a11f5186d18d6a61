// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
)

var (
	fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	alice    = document.Editor{ID: "u-alice", Name: "Dr. Alice Mota"}
	errQuota = errors.New("upstream quota exceeded")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTranslator prefixes text with the target code and fails for listed targets.
type fakeTranslator struct {
	mutex sync.Mutex
	fail  map[language.Code]error
	calls []string
}

func (translator *fakeTranslator) Translate(_ context.Context, text string, _, target language.Code) (string, error) {
	translator.mutex.Lock()
	defer translator.mutex.Unlock()

	translator.calls = append(translator.calls, string(target)+":"+text)
	if err := translator.fail[target]; err != nil {
		return "", err
	}
	return "[" + string(target) + "] " + text, nil
}

func (translator *fakeTranslator) callCount() int {
	translator.mutex.Lock()
	defer translator.mutex.Unlock()
	return len(translator.calls)
}

// seedDocument returns a document with English definition and references and
// a Portuguese definition.
func seedDocument() *document.Document {
	return &document.Document{
		ID:      "0190f0a4-7c1e-7b7a-9a51-3b1f9a2c0d11",
		Name:    map[language.Code]string{language.English: "Lateral Epicondylitis"},
		Tags:    []string{"elbow"},
		Version: 1,
		Sections: map[document.SectionID]*document.Section{
			document.SectionDefinition: {
				ID:   document.SectionDefinition,
				Kind: document.KindText,
				Content: map[language.Code]document.Value{
					language.English:    document.TextValue("Overuse of the **wrist extensors**."),
					language.Portuguese: document.TextValue("Sobrecarga dos extensores."),
				},
				Media:    []document.MediaItem{},
				EditMeta: map[language.Code]document.EditMeta{},
			},
			document.SectionReferences: {
				ID:   document.SectionReferences,
				Kind: document.KindReference,
				Content: map[language.Code]document.Value{
					language.English: document.ReferenceValue([]string{"Smith J. Elbow. 2020.", "Doe A. Tendons. 2019."}),
				},
				Media:    []document.MediaItem{},
				EditMeta: map[language.Code]document.EditMeta{},
			},
		},
		CreatedAt: fixedNow.Add(-time.Hour),
		UpdatedAt: fixedNow.Add(-time.Hour),
	}
}

type fixture struct {
	repository *document.MemoryRepository
	translator *fakeTranslator
	service    *document.Service
	document   *document.Document
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repository := document.NewMemoryRepository()
	seeded := seedDocument()
	require.NoError(t, repository.Create(context.Background(), seeded))

	translator := &fakeTranslator{fail: map[language.Code]error{}}
	orchestrator := translation.NewOrchestrator(translator, document.NewTranslationSource(repository), 2, discardLogger())
	service := document.NewService(repository, orchestrator, discardLogger()).WithClock(func() time.Time { return fixedNow })

	return &fixture{repository: repository, translator: translator, service: service, document: seeded}
}
