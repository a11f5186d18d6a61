// Copyright (c) 2026 PMR Atlas. All rights reserved.

package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
)

// # Whole-document sources

// SourceSection is the base-language content of one section, split into segments.
type SourceSection struct {
	ID       string
	Segments []string
}

// SourceDocument is everything a whole-document translation reads.
type SourceDocument struct {
	ID       string
	Name     string
	Sections []SourceSection
}

// SourceLoader reads the base-language content of a document.
type SourceLoader interface {
	LoadSource(context context.Context, documentID string, source language.Code) (*SourceDocument, error)
}

// DocumentTranslation is the result of translating a whole document into one
// language. Sections holds translated segments by section id; Failures holds
// the sections whose translation failed.
type DocumentTranslation struct {
	DocumentID string
	Source     language.Code
	Target     language.Code
	Name       string
	NameErr    error
	Sections   map[string][]string
	Failures   map[string]error
}

// Empty reports whether nothing was translated.
func (result *DocumentTranslation) Empty() bool {
	return len(result.Sections) == 0 && result.Name == ""
}

// # Orchestrator

// Orchestrator runs a [Translator] over sections and documents.
type Orchestrator struct {
	translator Translator
	source     SourceLoader
	parallel   int
	logger     *slog.Logger
}

/*
NewOrchestrator creates an orchestrator.

Parameters:
  - translator: Translator (Backend for single pieces of text)
  - source: SourceLoader (Reads documents for whole-document translation; may be nil)
  - parallel: int (Maximum concurrent translator calls per request)
  - logger: *slog.Logger

Returns:
  - *Orchestrator: The initialized orchestrator
*/
func NewOrchestrator(translator Translator, source SourceLoader, parallel int, logger *slog.Logger) *Orchestrator {
	if parallel < 1 {
		parallel = 1
	}
	return &Orchestrator{translator: translator, source: source, parallel: parallel, logger: logger}
}

/*
TranslateSection translates every segment of a section into each target.

Description: Targets run concurrently; a failing target does not cancel its
siblings. Targets equal to the source or repeated are dropped. Blank segments
are copied through without a translator call. The returned outcomes follow the
order of the remaining targets.

Parameters:
  - context: context.Context
  - request: Request

Returns:
  - []Outcome: One outcome per distinct target
*/
func (orchestrator *Orchestrator) TranslateSection(context context.Context, request Request) []Outcome {
	targets := distinctTargets(request.Source, request.Targets)
	outcomes := make([]Outcome, len(targets))

	var group errgroup.Group
	group.SetLimit(orchestrator.parallel)

	for i, target := range targets {
		group.Go(func() error {
			started := time.Now()
			segments, err := orchestrator.translateSegments(context, request.Segments, request.Source, target)
			outcomes[i] = Outcome{Language: target, Segments: segments, Err: err}

			orchestrator.logger.Debug("translation_target_completed",
				slog.String("document_id", request.DocumentID),
				slog.String("section_id", request.SectionID),
				slog.String("target", string(target)),
				slog.Bool("success", err == nil),
				slog.Duration("duration", time.Since(started)),
			)
			return nil
		})
	}

	_ = group.Wait()
	return outcomes
}

/*
TranslateWholeDocument translates every non-empty base-language section and
the document name into target.

Returns:
  - *DocumentTranslation: Translated sections plus per-section failures
  - error: apperr.Unprocessable if target is the base language, or the loader error
*/
func (orchestrator *Orchestrator) TranslateWholeDocument(context context.Context, documentID string, target language.Code) (*DocumentTranslation, error) {
	if !target.IsValid() {
		return nil, language.ErrUnsupported
	}
	if target.IsBase() {
		return nil, apperr.Unprocessable("The base language cannot be a translation target")
	}
	if orchestrator.source == nil {
		return nil, apperr.Internal(fmt.Errorf("translation: no source loader configured"))
	}

	source, err := orchestrator.source.LoadSource(context, documentID, language.Base)
	if err != nil {
		return nil, err
	}

	result := &DocumentTranslation{
		DocumentID: documentID,
		Source:     language.Base,
		Target:     target,
		Sections:   make(map[string][]string),
		Failures:   make(map[string]error),
	}

	var (
		group errgroup.Group
		mutex sync.Mutex
	)
	group.SetLimit(orchestrator.parallel)

	if strings.TrimSpace(source.Name) != "" {
		group.Go(func() error {
			name, err := orchestrator.translator.Translate(context, source.Name, language.Base, target)
			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				result.NameErr = err
				return nil
			}
			result.Name = name
			return nil
		})
	}

	for _, section := range source.Sections {
		if blank(section.Segments) {
			continue
		}
		group.Go(func() error {
			segments, err := orchestrator.translateSegments(context, section.Segments, language.Base, target)
			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				result.Failures[section.ID] = err
				return nil
			}
			result.Sections[section.ID] = segments
			return nil
		})
	}

	_ = group.Wait()

	orchestrator.logger.Info("document_translation_completed",
		slog.String("document_id", documentID),
		slog.String("target", string(target)),
		slog.Int("sections_translated", len(result.Sections)),
		slog.Int("sections_failed", len(result.Failures)),
	)

	return result, nil
}

// # Helpers

func (orchestrator *Orchestrator) translateSegments(context context.Context, segments []string, source, target language.Code) ([]string, error) {
	if !target.IsValid() {
		return nil, language.ErrUnsupported
	}

	translated := make([]string, len(segments))
	for i, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			translated[i] = segment
			continue
		}

		text, err := orchestrator.translator.Translate(context, segment, source, target)
		if err != nil {
			return nil, err
		}
		translated[i] = text
	}
	return translated, nil
}

func distinctTargets(source language.Code, targets []language.Code) []language.Code {
	seen := map[language.Code]bool{source: true}
	out := make([]language.Code, 0, len(targets))
	for _, target := range targets {
		if seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out
}

func blank(segments []string) bool {
	for _, segment := range segments {
		if strings.TrimSpace(segment) != "" {
			return false
		}
	}
	return true
}
