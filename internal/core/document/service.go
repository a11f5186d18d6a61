// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/markup"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
	"github.com/carolinavmo/pmr-atlas/internal/platform/validate"
	"github.com/carolinavmo/pmr-atlas/pkg/uuid"
)

// # Fields and Limits

const (
	FieldID              = "id"
	FieldName            = "name"
	FieldLanguage        = "language"
	FieldSourceLanguage  = "source_language"
	FieldTargetLanguages = "target_languages"
	FieldTargetLanguage  = "target_language"
	FieldSectionID       = "section_id"
	FieldContent         = "content"
	FieldMedia           = "media"
)

const (
	maxTextChars      = 100_000
	maxEntries        = 500
	maxEntryChars     = 2_000
	maxMediaItems     = 20
	maxMediaURLChars  = 2_048
	maxDescription    = 500
	maxNameChars      = 300
	minMediaSize      = 10
	maxMediaSize      = 100
	defaultMediaSize  = 100
	defaultMediaAlign = AlignCenter
)

// # Inputs and Results

// SaveSectionInput is the body of a single-language save.
type SaveSectionInput struct {
	Language  string `json:"language"`
	SectionID string `json:"section_id"`
	Content   Value  `json:"content"`
}

// SaveAndTranslateInput is the body of a save followed by translation fan-out.
// An empty source means the base language; empty targets mean every other language.
type SaveAndTranslateInput struct {
	SourceLanguage  string   `json:"source_language"`
	SectionID       string   `json:"section_id"`
	Content         Value    `json:"content"`
	TargetLanguages []string `json:"target_languages"`
}

// SectionMediaInput replaces the media of a section.
type SectionMediaInput struct {
	SectionID string      `json:"section_id"`
	Media     []MediaItem `json:"media"`
}

// TranslateDocumentInput asks for a whole-document translation.
type TranslateDocumentInput struct {
	TargetLanguage string `json:"target_language"`
}

// TranslationResult is returned by save-and-translate.
type TranslationResult struct {
	Document          *Document             `json:"document"`
	Outcomes          []translation.Outcome `json:"outcomes"`
	TranslationsCount int                   `json:"translations_count"`
}

// DocumentTranslationResult is returned by a whole-document translation.
type DocumentTranslationResult struct {
	Document           *Document            `json:"document"`
	Language           language.Code        `json:"language"`
	TranslatedSections []SectionID          `json:"translated_sections"`
	FailedSections     map[SectionID]string `json:"failed_sections,omitempty"`
	NameError          string               `json:"name_error,omitempty"`
}

// RenderedSection is a section resolved to one language and rendered to HTML.
type RenderedSection struct {
	DocumentID string        `json:"document_id"`
	SectionID  SectionID     `json:"section_id"`
	Label      string        `json:"label"`
	Language   language.Code `json:"language"`
	Fallback   bool          `json:"fallback"`
	HTML       string        `json:"html"`
	Media      []MediaItem   `json:"media"`
}

// # Service

// Translator is what the service needs from the translation orchestrator.
type Translator interface {
	SectionTranslator
	TranslateWholeDocument(context context.Context, documentID string, target language.Code) (*translation.DocumentTranslation, error)
}

type Service struct {
	repository Repository
	translator Translator
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repository Repository, translator Translator, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		translator: translator,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Tests use it to pin timestamps.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

func (service *Service) GetDocument(context context.Context, id string) (*Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.NotFound("Document")
	}
	return service.repository.FindByID(context, id)
}

func (service *Service) ListVersions(context context.Context, id string, limit, offset int) ([]*Version, int, error) {
	if _, err := service.GetDocument(context, id); err != nil {
		return nil, 0, err
	}
	return service.repository.ListVersions(context, id, limit, offset)
}

/*
SaveSection writes one section in one language.

Returns:
  - *Document: The document as stored after the commit
  - error: Validation, not-found or storage errors
*/
func (service *Service) SaveSection(context context.Context, id string, input SaveSectionInput, editor Editor) (*Document, error) {
	validator := &validate.Validator{}
	lang := parseLanguage(validator, FieldLanguage, input.Language)
	sectionID := parseSection(validator, input.SectionID)
	content := cleanValue(input.Content, sectionID)
	validateValue(validator, content)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	document, err := service.GetDocument(context, id)
	if err != nil {
		return nil, err
	}

	commit, err := document.ApplyFieldUpdate(sectionID, lang, content, editor, service.now())
	if err != nil {
		return nil, err
	}

	version, err := service.repository.Commit(context, commit)
	if err != nil {
		return nil, err
	}

	service.logger.Info("section_saved",
		slog.String("document_id", id),
		slog.String("section_id", string(sectionID)),
		slog.String("language", string(lang)),
		slog.Int("version", version),
		slog.String("editor_id", editor.ID),
	)

	return service.repository.FindByID(context, id)
}

/*
SaveAndTranslate writes the source content and fans it out to the targets.

Description: Translation failures are reported per language in the result and
never fail the request; the source content is committed regardless.
*/
func (service *Service) SaveAndTranslate(context context.Context, id string, input SaveAndTranslateInput, editor Editor) (*TranslationResult, error) {
	validator := &validate.Validator{}

	source := language.Base
	if strings.TrimSpace(input.SourceLanguage) != "" {
		source = parseLanguage(validator, FieldSourceLanguage, input.SourceLanguage)
	}

	var targets []language.Code
	for _, raw := range input.TargetLanguages {
		if target := parseLanguage(validator, FieldTargetLanguages, raw); target != "" {
			targets = append(targets, target)
		}
	}
	if len(input.TargetLanguages) == 0 {
		targets = otherLanguages(source)
	}

	sectionID := parseSection(validator, input.SectionID)
	content := cleanValue(input.Content, sectionID)
	validateValue(validator, content)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	document, err := service.GetDocument(context, id)
	if err != nil {
		return nil, err
	}

	commit, report, err := document.ApplyTranslationFanout(context, service.translator, sectionID, source, content, targets, editor, service.now())
	if err != nil {
		return nil, err
	}

	version, err := service.repository.Commit(context, commit)
	if err != nil {
		return nil, err
	}

	service.logger.Info("section_translated",
		slog.String("document_id", id),
		slog.String("section_id", string(sectionID)),
		slog.String("source", string(source)),
		slog.Int("translated", report.Translated),
		slog.Int("version", version),
	)
	for _, outcome := range report.Outcomes {
		if !outcome.OK() {
			service.logger.Warn("translation_partial_failure",
				slog.String("document_id", id),
				slog.String("section_id", string(sectionID)),
				slog.String("target", string(outcome.Language)),
				slog.Any("error", outcome.Err),
			)
		}
	}

	stored, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	outcomes := report.Outcomes
	if outcomes == nil {
		outcomes = []translation.Outcome{}
	}
	return &TranslationResult{Document: stored, Outcomes: outcomes, TranslationsCount: report.Translated}, nil
}

// SetSectionMedia replaces the media list of a section.
func (service *Service) SetSectionMedia(context context.Context, id string, input SectionMediaInput, editor Editor) (*Document, error) {
	validator := &validate.Validator{}
	sectionID := parseSection(validator, input.SectionID)
	media := normalizeMedia(input.Media)
	validateMedia(validator, media)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	document, err := service.GetDocument(context, id)
	if err != nil {
		return nil, err
	}

	commit, err := document.SetSectionMedia(sectionID, media, editor, service.now())
	if err != nil {
		return nil, err
	}

	version, err := service.repository.Commit(context, commit)
	if err != nil {
		return nil, err
	}

	service.logger.Info("section_media_replaced",
		slog.String("document_id", id),
		slog.String("section_id", string(sectionID)),
		slog.Int("items", len(media)),
		slog.Int("version", version),
	)

	return service.repository.FindByID(context, id)
}

/*
TranslateDocument translates every base-language section into one language.

Returns:
  - *DocumentTranslationResult: The stored document and per-section status
  - error: apperr.BadGateway when no section could be translated
*/
func (service *Service) TranslateDocument(context context.Context, id string, input TranslateDocumentInput, editor Editor) (*DocumentTranslationResult, error) {
	validator := &validate.Validator{}
	target := parseLanguage(validator, FieldTargetLanguage, input.TargetLanguage)
	validator.Custom(FieldTargetLanguage, target.IsBase(), "The base language cannot be a translation target")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.GetDocument(context, id); err != nil {
		return nil, err
	}

	result, err := service.translator.TranslateWholeDocument(context, id, target)
	if err != nil {
		return nil, err
	}

	// Re-read so the translation lands on the latest stored state.
	document, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	commit, err := document.ApplyDocumentTranslation(result, editor, service.now())
	if errors.Is(err, ErrNothingTranslated) {
		return nil, apperr.BadGateway("No section could be translated", firstFailure(result))
	}
	if err != nil {
		return nil, err
	}

	version, err := service.repository.Commit(context, commit)
	if err != nil {
		return nil, err
	}

	service.logger.Info("document_translated",
		slog.String("document_id", id),
		slog.String("target", string(target)),
		slog.Int("sections_translated", len(result.Sections)),
		slog.Int("sections_failed", len(result.Failures)),
		slog.Int("version", version),
	)

	stored, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	out := &DocumentTranslationResult{Document: stored, Language: target, TranslatedSections: []SectionID{}}
	for _, sectionID := range Sections() {
		if _, ok := result.Sections[string(sectionID)]; ok {
			out.TranslatedSections = append(out.TranslatedSections, sectionID)
		}
		if failure, ok := result.Failures[string(sectionID)]; ok {
			if out.FailedSections == nil {
				out.FailedSections = make(map[SectionID]string)
			}
			out.FailedSections[sectionID] = failure.Error()
		}
	}
	if result.NameErr != nil {
		out.NameError = result.NameErr.Error()
	}
	return out, nil
}

// RenderSection resolves a section in lang, falling back to the base
// language, and renders it to sanitized HTML.
func (service *Service) RenderSection(context context.Context, id string, rawSection string, lang language.Code) (*RenderedSection, error) {
	validator := &validate.Validator{}
	sectionID := parseSection(validator, rawSection)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	document, err := service.GetDocument(context, id)
	if err != nil {
		return nil, err
	}

	value, err := document.Content(sectionID, lang)
	if err != nil {
		return nil, err
	}

	rendered := &RenderedSection{
		DocumentID: document.ID,
		SectionID:  sectionID,
		Label:      sectionID.Label(),
		Language:   lang,
		Fallback:   !lang.IsBase() && !document.HasContent(sectionID, lang),
		HTML:       renderValue(value),
		Media:      []MediaItem{},
	}
	if section := document.Sections[sectionID]; section != nil {
		rendered.Media = append(rendered.Media, section.Media...)
	}
	return rendered, nil
}

/*
CreateDocument stores a new document. Missing ids are generated; the version
starts at 1.
*/
func (service *Service) CreateDocument(context context.Context, document *Document) (*Document, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, document.Name[language.Base]).MaxLen(FieldName, document.Name[language.Base], maxNameChars)
	if document.ID != "" {
		validator.UUID(FieldID, document.ID)
	}
	for code := range document.Name {
		validator.Custom(FieldName, !code.IsValid(), fmt.Sprintf("Unsupported language %q", code))
	}

	for id, section := range document.Sections {
		validator.Custom(FieldSectionID, !id.IsValid(), fmt.Sprintf("Unknown section %q", id))
		if !id.IsValid() {
			continue
		}
		section.ID = id
		section.Kind = id.Kind()
		if section.Content == nil {
			section.Content = make(map[language.Code]Value)
		}
		if section.EditMeta == nil {
			section.EditMeta = make(map[language.Code]EditMeta)
		}
		for code, value := range section.Content {
			validator.Custom(FieldContent, !code.IsValid(), fmt.Sprintf("Unsupported language %q", code))
			cleaned := cleanValue(value, id)
			validateValue(validator, cleaned)
			section.Content[code] = cleaned
		}
		section.Media = normalizeMedia(section.Media)
		validateMedia(validator, section.Media)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := service.now()
	if document.ID == "" {
		document.ID = uuid.New()
	}
	if document.Tags == nil {
		document.Tags = []string{}
	}
	if document.Sections == nil {
		document.Sections = make(map[SectionID]*Section)
	}
	document.Version = 1
	document.CreatedAt = now
	document.UpdatedAt = now

	if err := service.repository.Create(context, document); err != nil {
		return nil, err
	}

	service.logger.Info("document_created",
		slog.String("document_id", document.ID),
		slog.String("name", document.Name[language.Base]),
	)
	return service.repository.FindByID(context, document.ID)
}

// # Helpers

func parseLanguage(validator *validate.Validator, field, raw string) language.Code {
	code, err := language.Parse(raw)
	if err != nil {
		validator.Custom(field, true, fmt.Sprintf("Must be one of: %s", strings.Join(language.Strings(), ", ")))
		return ""
	}
	return code
}

func parseSection(validator *validate.Validator, raw string) SectionID {
	id := SectionID(strings.TrimSpace(raw))
	validator.Required(FieldSectionID, raw)
	if id != "" {
		validator.Custom(FieldSectionID, !id.IsValid(), "Unknown section")
	}
	return id
}

// cleanValue coerces to the section kind and strips executable markup.
// An unknown section leaves the value untouched for the validator to reject.
func cleanValue(value Value, sectionID SectionID) Value {
	if sectionID.IsValid() {
		value = value.As(sectionID.Kind())
	}
	value = value.Map(markup.Sanitize)
	if value.Kind == KindReference {
		entries := value.Entries[:0:0]
		for _, entry := range value.Entries {
			if trimmed := strings.TrimSpace(entry); trimmed != "" {
				entries = append(entries, trimmed)
			}
		}
		value = ReferenceValue(entries)
	}
	return value
}

func validateValue(validator *validate.Validator, value Value) {
	if value.Kind == KindReference {
		validator.MaxItems(FieldContent, len(value.Entries), maxEntries)
		for _, entry := range value.Entries {
			validator.MaxLen(FieldContent, entry, maxEntryChars)
		}
		return
	}
	validator.MaxLen(FieldContent, value.Text, maxTextChars)
}

func normalizeMedia(items []MediaItem) []MediaItem {
	out := make([]MediaItem, 0, len(items))
	for _, item := range items {
		item.URL = strings.TrimSpace(item.URL)
		item.Description = markup.Sanitize(strings.TrimSpace(item.Description))
		if item.SizePercent == 0 {
			item.SizePercent = defaultMediaSize
		}
		if item.Alignment == "" {
			item.Alignment = defaultMediaAlign
		}
		out = append(out, item)
	}
	return out
}

func validateMedia(validator *validate.Validator, items []MediaItem) {
	validator.MaxItems(FieldMedia, len(items), maxMediaItems)
	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", FieldMedia, i)
		validator.Required(field+".url", item.URL).MaxLen(field+".url", item.URL, maxMediaURLChars)
		if item.URL != "" {
			validator.URL(field+".url", item.URL)
		}
		validator.Custom(field+".type", !item.Kind.IsValid(), "Must be one of: image, video")
		validator.MaxLen(field+".description", item.Description, maxDescription)
		validator.Range(field+".size_percent", item.SizePercent, minMediaSize, maxMediaSize)
		validator.OneOf(field+".alignment", string(item.Alignment), Alignments()...)
	}
}

func otherLanguages(source language.Code) []language.Code {
	var targets []language.Code
	for _, code := range language.All() {
		if code != source {
			targets = append(targets, code)
		}
	}
	return targets
}

func renderValue(value Value) string {
	if value.Kind != KindReference {
		return markup.RenderHTML(value.Text)
	}

	items := make([][]markup.Run, 0, len(value.Entries))
	for _, entry := range value.Entries {
		items = append(items, markup.ParseInline(entry))
	}
	if len(items) == 0 {
		return ""
	}
	return markup.RenderHTML(markup.Encode([]markup.Block{markup.NewList(markup.Ordered, items...)}))
}

func firstFailure(result *translation.DocumentTranslation) error {
	for _, id := range Sections() {
		if err, ok := result.Failures[string(id)]; ok {
			return err
		}
	}
	return result.NameErr
}
