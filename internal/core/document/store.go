// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document

import "context"

// Repository persists documents and their change history.
type Repository interface {
	FindByID(context context.Context, id string) (*Document, error)
	Create(context context.Context, document *Document) error

	// Commit applies the pairs named by commit, bumps the stored version by
	// one and appends a history entry. It returns the new version.
	Commit(context context.Context, commit *Commit) (int, error)

	ListVersions(context context.Context, documentID string, limit, offset int) ([]*Version, int, error)
}

func versionEntry(id string, version int, commit *Commit) *Version {
	return &Version{
		ID:              id,
		DocumentID:      commit.DocumentID,
		Version:         version,
		EditType:        commit.EditType,
		Language:        commit.Language,
		TargetLanguages: commit.Targets,
		Sections:        commit.Sections(),
		EditedBy:        commit.Editor.ID,
		EditedByName:    commit.Editor.Name,
		CreatedAt:       commit.At,
	}
}
