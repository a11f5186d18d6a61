// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package document holds the multi-language content of reference documents.

A document is a fixed set of sections; each section stores one value per
language plus media and per-language edit metadata. The aggregate methods in
model.go are the only way content changes: every committed change bumps the
document version once and produces a [Commit] naming exactly the
(section, language) pairs it wrote, so the store can persist last-writer-wins
per pair without clobbering concurrent edits of other pairs.
*/
package document

import (
	"time"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
)

// # Sections

// SectionID names one of the fixed sections of a document.
type SectionID string

const (
	SectionDefinition              SectionID = "definition"
	SectionEpidemiology            SectionID = "epidemiology"
	SectionPathophysiology         SectionID = "pathophysiology"
	SectionBiomechanics            SectionID = "biomechanics"
	SectionClinicalPresentation    SectionID = "clinical_presentation"
	SectionPhysicalExamination     SectionID = "physical_examination"
	SectionImagingFindings         SectionID = "imaging_findings"
	SectionDifferentialDiagnosis   SectionID = "differential_diagnosis"
	SectionTreatmentConservative   SectionID = "treatment_conservative"
	SectionTreatmentInterventional SectionID = "treatment_interventional"
	SectionTreatmentSurgical       SectionID = "treatment_surgical"
	SectionRehabilitationProtocol  SectionID = "rehabilitation_protocol"
	SectionPrognosis               SectionID = "prognosis"
	SectionReferences              SectionID = "references"
)

var sectionLabels = []struct {
	id    SectionID
	label string
}{
	{SectionDefinition, "Definition"},
	{SectionEpidemiology, "Epidemiology"},
	{SectionPathophysiology, "Pathophysiology"},
	{SectionBiomechanics, "Biomechanics"},
	{SectionClinicalPresentation, "Clinical Presentation"},
	{SectionPhysicalExamination, "Physical Examination"},
	{SectionImagingFindings, "Imaging Findings"},
	{SectionDifferentialDiagnosis, "Differential Diagnosis"},
	{SectionTreatmentConservative, "Conservative Treatment"},
	{SectionTreatmentInterventional, "Interventional Treatment"},
	{SectionTreatmentSurgical, "Surgical Treatment"},
	{SectionRehabilitationProtocol, "Rehabilitation Protocol"},
	{SectionPrognosis, "Prognosis"},
	{SectionReferences, "References"},
}

// Sections returns every section id in display order.
func Sections() []SectionID {
	ids := make([]SectionID, 0, len(sectionLabels))
	for _, entry := range sectionLabels {
		ids = append(ids, entry.id)
	}
	return ids
}

// IsValid reports whether the id names a known section.
func (id SectionID) IsValid() bool {
	_, ok := id.lookup()
	return ok
}

// Label returns the English display label.
func (id SectionID) Label() string {
	label, _ := id.lookup()
	return label
}

// Kind reports which content variant the section holds.
func (id SectionID) Kind() SectionKind {
	if id == SectionReferences {
		return KindReference
	}
	return KindText
}

func (id SectionID) lookup() (string, bool) {
	for _, entry := range sectionLabels {
		if entry.id == id {
			return entry.label, true
		}
	}
	return "", false
}

// SectionKind discriminates the section content variants.
type SectionKind string

const (
	// KindText sections hold one markup string per language.
	KindText SectionKind = "text"
	// KindReference sections hold an ordered list of citation strings per language.
	KindReference SectionKind = "reference"
)

// # Media

// MediaKind is the type of an attached media item.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// IsValid reports whether the kind is supported.
func (kind MediaKind) IsValid() bool {
	return kind == MediaImage || kind == MediaVideo
}

// Alignment places a media item relative to the section text.
type Alignment string

const (
	AlignBefore Alignment = "before"
	AlignAfter  Alignment = "after"
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignCenter Alignment = "center"
)

// Alignments lists every accepted alignment.
func Alignments() []string {
	return []string{string(AlignBefore), string(AlignAfter), string(AlignLeft), string(AlignRight), string(AlignCenter)}
}

// MediaItem is an image or video attached to a section. Media is shared by
// all languages of the section.
type MediaItem struct {
	URL         string    `json:"url"`
	Kind        MediaKind `json:"type"`
	Description string    `json:"description"`
	SizePercent int       `json:"size_percent"`
	Alignment   Alignment `json:"alignment"`
}

// # Edit Metadata

// Editor identifies who made a change.
type Editor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EditMeta records the last change of one (section, language) pair.
type EditMeta struct {
	EditedBy       string        `json:"last_edited_by"`
	EditedByName   string        `json:"last_edited_by_name"`
	EditedAt       time.Time     `json:"last_edited_at"`
	TranslatedAt   *time.Time    `json:"translated_at,omitempty"`
	TranslatedFrom language.Code `json:"translated_from,omitempty"`
}

func editedBy(editor Editor, at time.Time) EditMeta {
	return EditMeta{EditedBy: editor.ID, EditedByName: editor.Name, EditedAt: at}
}

func translatedBy(editor Editor, at time.Time, from language.Code) EditMeta {
	meta := editedBy(editor, at)
	translatedAt := at
	meta.TranslatedAt = &translatedAt
	meta.TranslatedFrom = from
	return meta
}

// # Aggregate

// Section is one section of a document across all languages.
type Section struct {
	ID       SectionID                  `json:"id"`
	Kind     SectionKind                `json:"kind"`
	Content  map[language.Code]Value    `json:"content"`
	Media    []MediaItem                `json:"media"`
	EditMeta map[language.Code]EditMeta `json:"edit_meta,omitempty"`
}

func newSection(id SectionID) *Section {
	return &Section{
		ID:       id,
		Kind:     id.Kind(),
		Content:  make(map[language.Code]Value),
		Media:    []MediaItem{},
		EditMeta: make(map[language.Code]EditMeta),
	}
}

// Document is the aggregate root for one reference entry.
type Document struct {
	ID                 string                   `json:"id"`
	Name               map[language.Code]string `json:"name"`
	CategoryID         string                   `json:"category_id,omitempty"`
	Tags               []string                 `json:"tags"`
	Version            int                      `json:"version"`
	LastEditedLanguage language.Code            `json:"last_edited_language,omitempty"`
	LastEditedAt       *time.Time               `json:"last_edited_at,omitempty"`
	LastEditedBy       string                   `json:"last_edited_by,omitempty"`
	Sections           map[SectionID]*Section   `json:"sections"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// DisplayName returns the name in lang, falling back to the base language.
func (document *Document) DisplayName(lang language.Code) string {
	if name := document.Name[lang]; name != "" {
		return name
	}
	return document.Name[language.Base]
}

// Clone returns a deep copy.
func (document *Document) Clone() *Document {
	clone := *document
	clone.Name = make(map[language.Code]string, len(document.Name))
	for code, name := range document.Name {
		clone.Name[code] = name
	}
	clone.Tags = append([]string{}, document.Tags...)
	if document.LastEditedAt != nil {
		at := *document.LastEditedAt
		clone.LastEditedAt = &at
	}

	clone.Sections = make(map[SectionID]*Section, len(document.Sections))
	for id, section := range document.Sections {
		copied := newSection(id)
		for code, value := range section.Content {
			copied.Content[code] = value.clone()
		}
		for code, meta := range section.EditMeta {
			copied.EditMeta[code] = meta
		}
		copied.Media = append(copied.Media, section.Media...)
		clone.Sections[id] = copied
	}
	return &clone
}

// # History

// EditType classifies a committed change.
type EditType string

const (
	EditSingleLanguage      EditType = "single_language"
	EditSaveAndTranslate    EditType = "save_and_translate"
	EditSectionMedia        EditType = "section_media"
	EditDocumentTranslation EditType = "document_translation"
)

// Version is one entry of a document's change history.
type Version struct {
	ID              string          `json:"id"`
	DocumentID      string          `json:"document_id"`
	Version         int             `json:"version"`
	EditType        EditType        `json:"edit_type"`
	Language        language.Code   `json:"language,omitempty"`
	TargetLanguages []language.Code `json:"target_languages,omitempty"`
	Sections        []SectionID     `json:"sections"`
	EditedBy        string          `json:"edited_by"`
	EditedByName    string          `json:"edited_by_name"`
	CreatedAt       time.Time       `json:"created_at"`
}
