// Copyright (c) 2026 PMR Atlas. All rights reserved.

package schema

// ContentSectionValueTable represents the 'content.sectionvalue' table.
// Text sections use Body; reference sections use Entries.
type ContentSectionValueTable struct {
	Table          string
	DocumentID     string
	SectionID      string
	Language       string
	Body           string
	Entries        string
	EditedBy       string
	EditedByName   string
	EditedAt       string
	TranslatedAt   string
	TranslatedFrom string
}

// ContentSectionValue is the schema definition for content.sectionvalue
var ContentSectionValue = ContentSectionValueTable{
	Table:          "content.sectionvalue",
	DocumentID:     "documentid",
	SectionID:      "sectionid",
	Language:       "language",
	Body:           "body",
	Entries:        "entries",
	EditedBy:       "editedby",
	EditedByName:   "editedbyname",
	EditedAt:       "editedat",
	TranslatedAt:   "translatedat",
	TranslatedFrom: "translatedfrom",
}

func (t ContentSectionValueTable) Columns() []string {
	return []string{t.DocumentID, t.SectionID, t.Language, t.Body, t.Entries, t.EditedBy, t.EditedByName, t.EditedAt, t.TranslatedAt, t.TranslatedFrom}
}
