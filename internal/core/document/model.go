// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document

import (
	"context"
	"time"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
)

// # Errors

var (
	// ErrUnknownSection is returned for section ids outside the fixed set.
	ErrUnknownSection = apperr.ValidationError("Unknown section")

	// ErrNothingTranslated is returned when a document translation produced no content.
	ErrNothingTranslated = apperr.BadGateway("No section could be translated", nil)
)

// # Commits

// FieldWrite is one (section, language) pair written by a commit.
type FieldWrite struct {
	Section  SectionID
	Language language.Code
	Value    Value
	Meta     EditMeta
}

// MediaWrite replaces the media list of one section.
type MediaWrite struct {
	Section SectionID
	Items   []MediaItem
}

// Commit describes one change to a document. The store applies exactly the
// pairs listed in Writes, replaces Media when set and bumps the version once.
type Commit struct {
	DocumentID string
	EditType   EditType
	Language   language.Code
	Targets    []language.Code
	Writes     []FieldWrite
	Media      *MediaWrite
	Names      map[language.Code]string
	Editor     Editor
	At         time.Time
}

// Sections returns the distinct sections touched by the commit.
func (commit *Commit) Sections() []SectionID {
	seen := make(map[SectionID]bool)
	var sections []SectionID
	for _, write := range commit.Writes {
		if !seen[write.Section] {
			seen[write.Section] = true
			sections = append(sections, write.Section)
		}
	}
	if commit.Media != nil && !seen[commit.Media.Section] {
		sections = append(sections, commit.Media.Section)
	}
	if sections == nil {
		sections = []SectionID{}
	}
	return sections
}

// # Reads

/*
Content returns the value of a section in lang.

Description: A derived language with no stored or only blank content falls
back to the base language. A section with no content at all yields the empty
value of its kind.

Returns:
  - Value: The resolved content
  - error: [ErrUnknownSection] or language.ErrUnsupported
*/
func (document *Document) Content(sectionID SectionID, lang language.Code) (Value, error) {
	if err := checkTarget(sectionID, lang); err != nil {
		return Value{}, err
	}

	kind := sectionID.Kind()
	section := document.Sections[sectionID]
	if section == nil {
		return EmptyValue(kind), nil
	}

	if value, ok := section.Content[lang]; ok && !value.IsEmpty() {
		return value.As(kind), nil
	}
	if value, ok := section.Content[language.Base]; ok {
		return value.As(kind), nil
	}
	return EmptyValue(kind), nil
}

// HasContent reports whether lang has its own non-blank value for the section.
func (document *Document) HasContent(sectionID SectionID, lang language.Code) bool {
	section := document.Sections[sectionID]
	if section == nil {
		return false
	}
	value, ok := section.Content[lang]
	return ok && !value.IsEmpty()
}

// MissingLanguage reports whether lang has no content of its own anywhere
// while the base language has some.
func (document *Document) MissingLanguage(lang language.Code) bool {
	if lang.IsBase() {
		return false
	}

	baseHasContent := false
	for _, id := range Sections() {
		if document.HasContent(id, lang) {
			return false
		}
		if document.HasContent(id, language.Base) {
			baseHasContent = true
		}
	}
	return baseHasContent
}

// # Writes

/*
ApplyFieldUpdate writes value into exactly one (section, language) pair.

Description: The value is coerced to the section kind. Edit metadata of the
pair is stamped with editor and at; other pairs are untouched. The document
version goes up by one.

Returns:
  - *Commit: The change to persist
  - error: [ErrUnknownSection] or language.ErrUnsupported
*/
func (document *Document) ApplyFieldUpdate(sectionID SectionID, lang language.Code, value Value, editor Editor, at time.Time) (*Commit, error) {
	if err := checkTarget(sectionID, lang); err != nil {
		return nil, err
	}

	commit := document.newCommit(EditSingleLanguage, lang, editor, at)
	document.write(commit, sectionID, lang, value.As(sectionID.Kind()), editedBy(editor, at))
	document.touch(lang, editor, at)
	return commit, nil
}

// FanoutReport summarises a save-and-translate.
type FanoutReport struct {
	Outcomes   []translation.Outcome
	Translated int
	Failed     []language.Code
}

// SectionTranslator translates one section into several languages.
type SectionTranslator interface {
	TranslateSection(context context.Context, request translation.Request) []translation.Outcome
}

/*
ApplyTranslationFanout writes the source value, then translates it into every
target and writes each successful translation.

Description: The source pair is written before any translation is attempted
and stays written even if every target fails. Failed targets keep their
previous value and metadata. The whole fan-out bumps the version once.

Parameters:
  - context: context.Context (Bounds the translator calls)
  - translator: SectionTranslator
  - sectionID: SectionID
  - source: language.Code
  - value: Value (Source content)
  - targets: []language.Code
  - editor: Editor
  - at: time.Time

Returns:
  - *Commit: The change to persist
  - *FanoutReport: Per-target outcomes
  - error: Validation errors only; translation failures are reported per target
*/
func (document *Document) ApplyTranslationFanout(context context.Context, translator SectionTranslator, sectionID SectionID, source language.Code, value Value, targets []language.Code, editor Editor, at time.Time) (*Commit, *FanoutReport, error) {
	if err := checkTarget(sectionID, source); err != nil {
		return nil, nil, err
	}
	for _, target := range targets {
		if !target.IsValid() {
			return nil, nil, language.ErrUnsupported
		}
	}

	kind := sectionID.Kind()
	value = value.As(kind)

	commit := document.newCommit(EditSaveAndTranslate, source, editor, at)
	document.write(commit, sectionID, source, value, editedBy(editor, at))

	outcomes := translator.TranslateSection(context, translation.Request{
		DocumentID: document.ID,
		SectionID:  string(sectionID),
		Source:     source,
		Segments:   value.Segments(),
		Targets:    targets,
	})

	report := &FanoutReport{Outcomes: outcomes}
	for _, outcome := range outcomes {
		if !outcome.OK() {
			report.Failed = append(report.Failed, outcome.Language)
			continue
		}
		commit.Targets = append(commit.Targets, outcome.Language)
		document.write(commit, sectionID, outcome.Language, FromSegments(kind, outcome.Segments), translatedBy(editor, at, source))
		report.Translated++
	}

	document.touch(source, editor, at)
	return commit, report, nil
}

/*
SetSectionMedia replaces the media list of a section for all languages.

Returns:
  - *Commit: The change to persist
  - error: [ErrUnknownSection]
*/
func (document *Document) SetSectionMedia(sectionID SectionID, items []MediaItem, editor Editor, at time.Time) (*Commit, error) {
	if !sectionID.IsValid() {
		return nil, ErrUnknownSection
	}

	media := append([]MediaItem{}, items...)
	document.section(sectionID).Media = media

	commit := document.newCommit(EditSectionMedia, "", editor, at)
	commit.Media = &MediaWrite{Section: sectionID, Items: media}
	document.touch("", editor, at)
	return commit, nil
}

/*
ApplyDocumentTranslation writes the sections and name of a whole-document
translation into its target language.

Returns:
  - *Commit: The change to persist
  - error: [ErrNothingTranslated] if the translation holds no content
*/
func (document *Document) ApplyDocumentTranslation(result *translation.DocumentTranslation, editor Editor, at time.Time) (*Commit, error) {
	if !result.Target.IsValid() {
		return nil, language.ErrUnsupported
	}
	if result.Empty() {
		return nil, ErrNothingTranslated
	}

	commit := document.newCommit(EditDocumentTranslation, result.Target, editor, at)
	commit.Targets = []language.Code{result.Target}

	for _, id := range Sections() {
		segments, ok := result.Sections[string(id)]
		if !ok {
			continue
		}
		document.write(commit, id, result.Target, FromSegments(id.Kind(), segments), translatedBy(editor, at, result.Source))
	}

	if result.Name != "" {
		if document.Name == nil {
			document.Name = make(map[language.Code]string)
		}
		document.Name[result.Target] = result.Name
		commit.Names = map[language.Code]string{result.Target: result.Name}
	}

	document.touch(result.Target, editor, at)
	return commit, nil
}

// # Internals

func checkTarget(sectionID SectionID, lang language.Code) error {
	if !sectionID.IsValid() {
		return ErrUnknownSection
	}
	if !lang.IsValid() {
		return language.ErrUnsupported
	}
	return nil
}

func (document *Document) section(id SectionID) *Section {
	if document.Sections == nil {
		document.Sections = make(map[SectionID]*Section)
	}
	section, ok := document.Sections[id]
	if !ok {
		section = newSection(id)
		document.Sections[id] = section
	}
	return section
}

func (document *Document) write(commit *Commit, sectionID SectionID, lang language.Code, value Value, meta EditMeta) {
	section := document.section(sectionID)
	section.Content[lang] = value
	section.EditMeta[lang] = meta
	commit.Writes = append(commit.Writes, FieldWrite{Section: sectionID, Language: lang, Value: value, Meta: meta})
}

func (document *Document) newCommit(editType EditType, lang language.Code, editor Editor, at time.Time) *Commit {
	return &Commit{
		DocumentID: document.ID,
		EditType:   editType,
		Language:   lang,
		Editor:     editor,
		At:         at,
	}
}

// touch records the edit on the document. An empty lang keeps the previous
// last-edited language.
func (document *Document) touch(lang language.Code, editor Editor, at time.Time) {
	document.Version++
	if lang != "" {
		document.LastEditedLanguage = lang
	}
	editedAt := at
	document.LastEditedAt = &editedAt
	document.LastEditedBy = editor.ID
	document.UpdatedAt = at
}
