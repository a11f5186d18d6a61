// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document

import (
	"context"
	"sort"
	"sync"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
	"github.com/carolinavmo/pmr-atlas/pkg/uuid"
)

// MemoryRepository keeps documents in process memory. It backs the API when
// no database is configured and the tests of every layer above the store.
type MemoryRepository struct {
	mutex     sync.RWMutex
	documents map[string]*Document
	versions  map[string][]*Version
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		documents: make(map[string]*Document),
		versions:  make(map[string][]*Version),
	}
}

func (repository *MemoryRepository) FindByID(_ context.Context, id string) (*Document, error) {
	repository.mutex.RLock()
	defer repository.mutex.RUnlock()

	stored, ok := repository.documents[id]
	if !ok {
		return nil, apperr.NotFound("Document")
	}
	return stored.Clone(), nil
}

func (repository *MemoryRepository) Create(_ context.Context, document *Document) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if _, ok := repository.documents[document.ID]; ok {
		return apperr.Conflict("Document already exists")
	}
	repository.documents[document.ID] = document.Clone()
	return nil
}

func (repository *MemoryRepository) Commit(_ context.Context, commit *Commit) (int, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	stored, ok := repository.documents[commit.DocumentID]
	if !ok {
		return 0, apperr.NotFound("Document")
	}

	for _, write := range commit.Writes {
		section := stored.section(write.Section)
		section.Content[write.Language] = write.Value.clone()
		section.EditMeta[write.Language] = write.Meta
	}

	if commit.Media != nil {
		stored.section(commit.Media.Section).Media = append([]MediaItem{}, commit.Media.Items...)
	}

	if len(commit.Names) > 0 && stored.Name == nil {
		stored.Name = make(map[language.Code]string)
	}
	for code, name := range commit.Names {
		stored.Name[code] = name
	}

	stored.touch(commit.Language, commit.Editor, commit.At)

	repository.versions[stored.ID] = append(repository.versions[stored.ID], versionEntry(uuid.New(), stored.Version, commit))
	return stored.Version, nil
}

func (repository *MemoryRepository) ListVersions(_ context.Context, documentID string, limit, offset int) ([]*Version, int, error) {
	repository.mutex.RLock()
	defer repository.mutex.RUnlock()

	history := append([]*Version{}, repository.versions[documentID]...)
	sort.SliceStable(history, func(i, j int) bool { return history[i].Version > history[j].Version })

	total := len(history)
	if offset >= total {
		return []*Version{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return history[offset:end], total, nil
}
