// Copyright (c) 2026 PMR Atlas. All rights reserved.

package schema

// ContentSectionMediaTable represents the 'content.sectionmedia' table
type ContentSectionMediaTable struct {
	Table       string
	DocumentID  string
	SectionID   string
	Position    string
	URL         string
	Kind        string
	Description string
	SizePercent string
	Alignment   string
}

// ContentSectionMedia is the schema definition for content.sectionmedia
var ContentSectionMedia = ContentSectionMediaTable{
	Table:       "content.sectionmedia",
	DocumentID:  "documentid",
	SectionID:   "sectionid",
	Position:    "position",
	URL:         "url",
	Kind:        "kind",
	Description: "description",
	SizePercent: "sizepercent",
	Alignment:   "alignment",
}

func (t ContentSectionMediaTable) Columns() []string {
	return []string{t.DocumentID, t.SectionID, t.Position, t.URL, t.Kind, t.Description, t.SizePercent, t.Alignment}
}
