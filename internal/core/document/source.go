// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document

import (
	"context"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
)

// TranslationSource lets the translation orchestrator read documents
// without importing this package.
type TranslationSource struct {
	repository Repository
}

func NewTranslationSource(repository Repository) *TranslationSource {
	return &TranslationSource{repository: repository}
}

// LoadSource returns the sections of a document that have content in source,
// in display order.
func (source *TranslationSource) LoadSource(context context.Context, documentID string, lang language.Code) (*translation.SourceDocument, error) {
	document, err := source.repository.FindByID(context, documentID)
	if err != nil {
		return nil, err
	}

	out := &translation.SourceDocument{ID: document.ID, Name: document.Name[lang]}
	for _, id := range Sections() {
		if !document.HasContent(id, lang) {
			continue
		}
		value, err := document.Content(id, lang)
		if err != nil {
			return nil, err
		}
		out.Sections = append(out.Sections, translation.SourceSection{ID: string(id), Segments: value.Segments()})
	}
	return out, nil
}
