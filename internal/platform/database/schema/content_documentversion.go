// Copyright (c) 2026 PMR Atlas. All rights reserved.

package schema

// ContentDocumentVersionTable represents the 'content.documentversion' table
type ContentDocumentVersionTable struct {
	Table           string
	ID              string
	DocumentID      string
	Version         string
	EditType        string
	Language        string
	TargetLanguages string
	Sections        string
	EditedBy        string
	EditedByName    string
	Snapshot        string
	CreatedAt       string
}

// ContentDocumentVersion is the schema definition for content.documentversion
var ContentDocumentVersion = ContentDocumentVersionTable{
	Table:           "content.documentversion",
	ID:              "id",
	DocumentID:      "documentid",
	Version:         "version",
	EditType:        "edittype",
	Language:        "language",
	TargetLanguages: "targetlanguages",
	Sections:        "sections",
	EditedBy:        "editedby",
	EditedByName:    "editedbyname",
	Snapshot:        "snapshot",
	CreatedAt:       "createdat",
}

func (t ContentDocumentVersionTable) Columns() []string {
	return []string{t.ID, t.DocumentID, t.Version, t.EditType, t.Language, t.TargetLanguages, t.Sections, t.EditedBy, t.EditedByName, t.Snapshot, t.CreatedAt}
}
