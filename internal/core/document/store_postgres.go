// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
	"github.com/carolinavmo/pmr-atlas/internal/platform/database/schema"
	"github.com/carolinavmo/pmr-atlas/internal/platform/dberr"
	"github.com/carolinavmo/pmr-atlas/internal/platform/postgres"
	"github.com/carolinavmo/pmr-atlas/pkg/uuid"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Reads

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Document, error) {
	if !uuid.IsValid(id) {
		return nil, apperr.NotFound("Document")
	}

	d := schema.ContentDocument
	query := fmt.Sprintf(`
		SELECT %s::text, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		d.ID, d.Name, d.CategoryID, d.Tags, d.Version, d.LastEditedLanguage,
		d.LastEditedAt, d.LastEditedBy, d.CreatedAt, d.UpdatedAt,
		d.Table, d.ID,
	)

	var (
		document       = &Document{Sections: make(map[SectionID]*Section)}
		name           []byte
		categoryID     *string
		lastEditedLang *string
		lastEditedBy   *string
	)

	err := repository.db.QueryRow(context, query, id).Scan(
		&document.ID, &name, &categoryID, &document.Tags, &document.Version, &lastEditedLang,
		&document.LastEditedAt, &lastEditedBy, &document.CreatedAt, &document.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Document", "find_document")
	}

	if err := json.Unmarshal(name, &document.Name); err != nil {
		return nil, apperr.Internal(fmt.Errorf("document: decode name: %w", err))
	}
	document.CategoryID = deref(categoryID)
	document.LastEditedLanguage = language.Code(deref(lastEditedLang))
	document.LastEditedBy = deref(lastEditedBy)
	if document.Tags == nil {
		document.Tags = []string{}
	}

	if err := repository.loadValues(context, document); err != nil {
		return nil, err
	}
	if err := repository.loadMedia(context, document); err != nil {
		return nil, err
	}
	return document, nil
}

func (repository *PostgresRepository) loadValues(context context.Context, document *Document) error {
	v := schema.ContentSectionValue
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		v.SectionID, v.Language, v.Body, v.Entries, v.EditedBy, v.EditedByName, v.EditedAt, v.TranslatedAt, v.TranslatedFrom,
		v.Table, v.DocumentID,
	)

	rows, err := repository.db.Query(context, query, document.ID)
	if err != nil {
		return dberr.Wrap(err, "Section", "list_section_values")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sectionID, lang        string
			body                   *string
			entries                []string
			editedBy, editedByName *string
			editedAt, translatedAt *time.Time
			translatedFrom         *string
		)
		if err := rows.Scan(&sectionID, &lang, &body, &entries, &editedBy, &editedByName, &editedAt, &translatedAt, &translatedFrom); err != nil {
			return dberr.Wrap(err, "Section", "scan_section_value")
		}

		id := SectionID(sectionID)
		if !id.IsValid() {
			continue
		}

		value := TextValue(deref(body))
		if entries != nil {
			value = ReferenceValue(entries)
		}

		meta := EditMeta{
			EditedBy:       deref(editedBy),
			EditedByName:   deref(editedByName),
			TranslatedAt:   translatedAt,
			TranslatedFrom: language.Code(deref(translatedFrom)),
		}
		if editedAt != nil {
			meta.EditedAt = *editedAt
		}

		section := document.section(id)
		section.Content[language.Code(lang)] = value.As(id.Kind())
		section.EditMeta[language.Code(lang)] = meta
	}
	return dberr.Wrap(rows.Err(), "Section", "iterate_section_values")
}

func (repository *PostgresRepository) loadMedia(context context.Context, document *Document) error {
	m := schema.ContentSectionMedia
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s, %s
	`,
		m.SectionID, m.URL, m.Kind, m.Description, m.SizePercent, m.Alignment,
		m.Table, m.DocumentID, m.SectionID, m.Position,
	)

	rows, err := repository.db.Query(context, query, document.ID)
	if err != nil {
		return dberr.Wrap(err, "Media", "list_section_media")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sectionID string
			item      MediaItem
		)
		if err := rows.Scan(&sectionID, &item.URL, &item.Kind, &item.Description, &item.SizePercent, &item.Alignment); err != nil {
			return dberr.Wrap(err, "Media", "scan_section_media")
		}
		if id := SectionID(sectionID); id.IsValid() {
			section := document.section(id)
			section.Media = append(section.Media, item)
		}
	}
	return dberr.Wrap(rows.Err(), "Media", "iterate_section_media")
}

func (repository *PostgresRepository) ListVersions(context context.Context, documentID string, limit, offset int) ([]*Version, int, error) {
	if !uuid.IsValid(documentID) {
		return []*Version{}, 0, nil
	}

	h := schema.ContentDocumentVersion
	query := fmt.Sprintf(`
		SELECT %s::text, %s, %s, %s, %s, %s, %s, %s, %s, count(*) OVER()
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3
	`,
		h.ID, h.Version, h.EditType, h.Language, h.TargetLanguages, h.Sections, h.EditedBy, h.EditedByName, h.CreatedAt,
		h.Table, h.DocumentID, h.Version,
	)

	rows, err := repository.db.Query(context, query, documentID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Version", "list_versions")
	}
	defer rows.Close()

	versions := []*Version{}
	total := 0
	for rows.Next() {
		var (
			entry                  = &Version{DocumentID: documentID}
			lang                   *string
			targets, sections      []string
			editedBy, editedByName *string
		)
		if err := rows.Scan(&entry.ID, &entry.Version, &entry.EditType, &lang, &targets, &sections, &editedBy, &editedByName, &entry.CreatedAt, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "Version", "scan_version")
		}

		entry.Language = language.Code(deref(lang))
		entry.EditedBy = deref(editedBy)
		entry.EditedByName = deref(editedByName)
		for _, target := range targets {
			entry.TargetLanguages = append(entry.TargetLanguages, language.Code(target))
		}
		entry.Sections = make([]SectionID, 0, len(sections))
		for _, section := range sections {
			entry.Sections = append(entry.Sections, SectionID(section))
		}
		versions = append(versions, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Version", "iterate_versions")
	}
	return versions, total, nil
}

// # Writes

func (repository *PostgresRepository) Create(context context.Context, document *Document) error {
	name, err := json.Marshal(document.Name)
	if err != nil {
		return apperr.Internal(fmt.Errorf("document: encode name: %w", err))
	}

	d := schema.ContentDocument
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
	`,
		d.Table, d.ID, d.Name, d.CategoryID, d.Tags, d.Version, d.CreatedAt, d.UpdatedAt,
	)

	return postgres.InTx(context, repository.db, func(tx pgx.Tx) error {
		tags := document.Tags
		if tags == nil {
			tags = []string{}
		}
		if _, err := tx.Exec(context, query, document.ID, name, document.CategoryID, tags, document.Version, document.CreatedAt, document.UpdatedAt); err != nil {
			return dberr.Wrap(err, "Document", "create_document")
		}

		batch := &pgx.Batch{}
		for _, id := range Sections() {
			section, ok := document.Sections[id]
			if !ok {
				continue
			}
			for lang, value := range section.Content {
				queueValue(batch, document.ID, FieldWrite{Section: id, Language: lang, Value: value, Meta: section.EditMeta[lang]})
			}
			for position, item := range section.Media {
				queueMedia(batch, document.ID, id, position, item)
			}
		}
		return sendBatch(context, tx, batch, "create_document_sections")
	})
}

/*
Commit persists a change in one transaction.

Description: The version is bumped in the database so concurrent commits on
the same document serialize on the row lock and each gets its own version.
Value rows are upserted per (section, language) pair; pairs not named by the
commit are never rewritten.
*/
func (repository *PostgresRepository) Commit(context context.Context, commit *Commit) (int, error) {
	names, err := json.Marshal(nonNilNames(commit.Names))
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("document: encode names: %w", err))
	}

	snapshot, err := json.Marshal(newSnapshot(commit))
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("document: encode snapshot: %w", err))
	}

	d := schema.ContentDocument
	bump := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + 1,
		    %s = COALESCE(NULLIF($2, ''), %s),
		    %s = $3, %s = $4, %s = $3,
		    %s = %s || $5::jsonb
		WHERE %s = $1
		RETURNING %s
	`,
		d.Table,
		d.Version, d.Version,
		d.LastEditedLanguage, d.LastEditedLanguage,
		d.LastEditedAt, d.LastEditedBy, d.UpdatedAt,
		d.Name, d.Name,
		d.ID, d.Version,
	)

	var version int
	err = postgres.InTx(context, repository.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(context, bump, commit.DocumentID, string(commit.Language), commit.At, commit.Editor.ID, names).Scan(&version)
		if err != nil {
			return dberr.Wrap(err, "Document", "bump_version")
		}

		batch := &pgx.Batch{}
		for _, write := range commit.Writes {
			queueValue(batch, commit.DocumentID, write)
		}

		if commit.Media != nil {
			m := schema.ContentSectionMedia
			batch.Queue(fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, m.Table, m.DocumentID, m.SectionID),
				commit.DocumentID, string(commit.Media.Section))
			for position, item := range commit.Media.Items {
				queueMedia(batch, commit.DocumentID, commit.Media.Section, position, item)
			}
		}

		queueVersion(batch, versionEntry(uuid.New(), version, commit), snapshot)
		return sendBatch(context, tx, batch, "commit_document")
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// # Batch Helpers

func queueValue(batch *pgx.Batch, documentID string, write FieldWrite) {
	v := schema.ContentSectionValue
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, NULLIF($10, ''))
		ON CONFLICT (%s, %s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s,
		    %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s
	`,
		v.Table, v.DocumentID, v.SectionID, v.Language, v.Body, v.Entries, v.EditedBy, v.EditedByName, v.EditedAt, v.TranslatedAt, v.TranslatedFrom,
		v.DocumentID, v.SectionID, v.Language,
		v.Body, v.Body, v.Entries, v.Entries, v.EditedBy, v.EditedBy, v.EditedByName, v.EditedByName,
		v.EditedAt, v.EditedAt, v.TranslatedAt, v.TranslatedAt, v.TranslatedFrom, v.TranslatedFrom,
	)

	var (
		body    *string
		entries []string
	)
	if write.Value.Kind == KindReference {
		entries = write.Value.Entries
		if entries == nil {
			entries = []string{}
		}
	} else {
		text := write.Value.Text
		body = &text
	}

	var editedAt *time.Time
	if !write.Meta.EditedAt.IsZero() {
		at := write.Meta.EditedAt
		editedAt = &at
	}

	batch.Queue(query,
		documentID, string(write.Section), string(write.Language), body, entries,
		write.Meta.EditedBy, write.Meta.EditedByName, editedAt, write.Meta.TranslatedAt, string(write.Meta.TranslatedFrom),
	)
}

func queueMedia(batch *pgx.Batch, documentID string, sectionID SectionID, position int, item MediaItem) {
	m := schema.ContentSectionMedia
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		m.Table, m.DocumentID, m.SectionID, m.Position, m.URL, m.Kind, m.Description, m.SizePercent, m.Alignment,
	)
	batch.Queue(query, documentID, string(sectionID), position, item.URL, string(item.Kind), item.Description, item.SizePercent, string(item.Alignment))
}

func queueVersion(batch *pgx.Batch, entry *Version, snapshot []byte) {
	h := schema.ContentDocumentVersion
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11)
	`,
		h.Table, h.ID, h.DocumentID, h.Version, h.EditType, h.Language, h.TargetLanguages, h.Sections, h.EditedBy, h.EditedByName, h.Snapshot, h.CreatedAt,
	)

	targets := make([]string, 0, len(entry.TargetLanguages))
	for _, target := range entry.TargetLanguages {
		targets = append(targets, string(target))
	}
	sections := make([]string, 0, len(entry.Sections))
	for _, section := range entry.Sections {
		sections = append(sections, string(section))
	}

	batch.Queue(query,
		entry.ID, entry.DocumentID, entry.Version, string(entry.EditType), string(entry.Language),
		targets, sections, entry.EditedBy, entry.EditedByName, snapshot, entry.CreatedAt,
	)
}

func sendBatch(context context.Context, tx pgx.Tx, batch *pgx.Batch, action string) error {
	if batch.Len() == 0 {
		return nil
	}

	results := tx.SendBatch(context, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return dberr.Wrap(err, "Document", action)
		}
	}
	return dberr.Wrap(results.Close(), "Document", action)
}

// # Snapshots

type snapshotWrite struct {
	Section  SectionID     `json:"section"`
	Language language.Code `json:"language"`
	Value    Value         `json:"value"`
}

type snapshotMedia struct {
	Section SectionID   `json:"section"`
	Items   []MediaItem `json:"items"`
}

// snapshot is the JSON stored with each history entry: the values written
// by the commit, enough to show or restore what changed.
type snapshot struct {
	Writes []snapshotWrite          `json:"writes"`
	Media  *snapshotMedia           `json:"media,omitempty"`
	Names  map[language.Code]string `json:"names,omitempty"`
}

func newSnapshot(commit *Commit) snapshot {
	out := snapshot{Writes: make([]snapshotWrite, 0, len(commit.Writes)), Names: commit.Names}
	for _, write := range commit.Writes {
		out.Writes = append(out.Writes, snapshotWrite{Section: write.Section, Language: write.Language, Value: write.Value})
	}
	if commit.Media != nil {
		out.Media = &snapshotMedia{Section: commit.Media.Section, Items: commit.Media.Items}
	}
	return out
}

func nonNilNames(names map[language.Code]string) map[language.Code]string {
	if names == nil {
		return map[language.Code]string{}
	}
	return names
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
