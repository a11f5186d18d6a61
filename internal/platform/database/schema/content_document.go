// Copyright (c) 2026 PMR Atlas. All rights reserved.

// Package schema names the tables and columns of the content store so that
// queries are assembled from one definition.
package schema

// ContentDocumentTable represents the 'content.document' table
type ContentDocumentTable struct {
	Table              string
	ID                 string
	Name               string
	CategoryID         string
	Tags               string
	Version            string
	LastEditedLanguage string
	LastEditedAt       string
	LastEditedBy       string
	CreatedAt          string
	UpdatedAt          string
}

// ContentDocument is the schema definition for content.document
var ContentDocument = ContentDocumentTable{
	Table:              "content.document",
	ID:                 "id",
	Name:               "name",
	CategoryID:         "categoryid",
	Tags:               "tags",
	Version:            "version",
	LastEditedLanguage: "lasteditedlanguage",
	LastEditedAt:       "lasteditedat",
	LastEditedBy:       "lasteditedby",
	CreatedAt:          "createdat",
	UpdatedAt:          "updatedat",
}

func (t ContentDocumentTable) Columns() []string {
	return []string{t.ID, t.Name, t.CategoryID, t.Tags, t.Version, t.LastEditedLanguage, t.LastEditedAt, t.LastEditedBy, t.CreatedAt, t.UpdatedAt}
}
