// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package seed loads reference documents from a YAML fixture file.

A section value is a YAML string for text sections and a YAML sequence for
the references section:

	documents:
	  - id: 0190f0a4-7c1e-7b7a-9a51-3b1f9a2c0d11
	    name: {en: Lateral Epicondylitis}
	    sections:
	      definition:
	        en: Overuse of the **wrist extensors**.
	      references:
	        en: [Smith J. Elbow. 2020.]
*/
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
)

type fixtureFile struct {
	Documents []fixtureDocument `yaml:"documents"`
}

type fixtureDocument struct {
	ID         string                                                `yaml:"id"`
	Name       map[language.Code]string                              `yaml:"name"`
	CategoryID string                                                `yaml:"category_id"`
	Tags       []string                                              `yaml:"tags"`
	Sections   map[document.SectionID]map[language.Code]fixtureValue `yaml:"sections"`
	Media      map[document.SectionID][]fixtureMedia                 `yaml:"media"`
}

type fixtureMedia struct {
	URL         string `yaml:"url"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	SizePercent int    `yaml:"size_percent"`
	Alignment   string `yaml:"alignment"`
}

// fixtureValue is a string or a list of strings.
type fixtureValue struct {
	value document.Value
}

func (fixture *fixtureValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		fixture.value = document.TextValue(node.Value)
	case yaml.SequenceNode:
		var entries []string
		if err := node.Decode(&entries); err != nil {
			return err
		}
		fixture.value = document.ReferenceValue(entries)
	default:
		return fmt.Errorf("seed: line %d: section value must be a string or a list", node.Line)
	}
	return nil
}

// Load decodes a fixture file into documents ready for creation.
func Load(reader io.Reader) ([]*document.Document, error) {
	var file fixtureFile
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: decode fixtures: %w", err)
	}

	documents := make([]*document.Document, 0, len(file.Documents))
	for _, fixture := range file.Documents {
		doc := &document.Document{
			ID:         fixture.ID,
			Name:       fixture.Name,
			CategoryID: fixture.CategoryID,
			Tags:       fixture.Tags,
			Sections:   make(map[document.SectionID]*document.Section),
		}

		for sectionID, values := range fixture.Sections {
			section := sectionOf(doc, sectionID)
			for code, value := range values {
				section.Content[code] = value.value
			}
		}
		for sectionID, items := range fixture.Media {
			section := sectionOf(doc, sectionID)
			for _, item := range items {
				section.Media = append(section.Media, document.MediaItem{
					URL:         item.URL,
					Kind:        document.MediaKind(item.Type),
					Description: item.Description,
					SizePercent: item.SizePercent,
					Alignment:   document.Alignment(item.Alignment),
				})
			}
		}

		documents = append(documents, doc)
	}
	return documents, nil
}

// Creator stores new documents. Satisfied by [*document.Service].
type Creator interface {
	CreateDocument(context context.Context, document *document.Document) (*document.Document, error)
}

// Result counts what a seed run did.
type Result struct {
	Created int
	Skipped int
}

/*
Run creates every document. Documents whose id already exists are skipped, so
the command can be re-run against a seeded database.

Returns:
  - Result: Created and skipped counts
  - error: The first error other than a conflict
*/
func Run(context context.Context, creator Creator, documents []*document.Document, logger *slog.Logger) (Result, error) {
	var result Result
	for _, doc := range documents {
		created, err := creator.CreateDocument(context, doc)
		if apperr.HasCode(err, "CONFLICT") {
			result.Skipped++
			logger.Info("seed_document_skipped", slog.String("document_id", doc.ID))
			continue
		}
		if err != nil {
			return result, fmt.Errorf("seed: create %q: %w", doc.Name[language.Base], err)
		}
		result.Created++
		logger.Info("seed_document_created", slog.String("document_id", created.ID))
	}
	return result, nil
}

func sectionOf(doc *document.Document, id document.SectionID) *document.Section {
	section, ok := doc.Sections[id]
	if !ok {
		section = &document.Section{ID: id, Content: make(map[language.Code]document.Value)}
		doc.Sections[id] = section
	}
	return section
}
