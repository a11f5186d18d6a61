// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
)

func TestService_SaveSection(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	saved, err := fx.service.SaveSection(ctx, fx.document.ID, document.SaveSectionInput{
		Language:  "es",
		SectionID: "definition",
		Content:   document.TextValue(`Sobreuso <script>alert(1)</script>del **extensor**.`),
	}, alice)
	require.NoError(t, err)

	assert.Equal(t, 2, saved.Version)
	assert.Equal(t, "Sobreuso del **extensor**.", saved.Sections[document.SectionDefinition].Content[language.Spanish].Text)
	assert.Equal(t, fixedNow, saved.Sections[document.SectionDefinition].EditMeta[language.Spanish].EditedAt)

	versions, total, err := fx.service.ListVersions(ctx, fx.document.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, document.EditSingleLanguage, versions[0].EditType)
	assert.Equal(t, language.Spanish, versions[0].Language)
}

/*
TestService_SaveSection_Rejects covers input that never reaches the store.
*/
func TestService_SaveSection_Rejects(t *testing.T) {
	fx := newFixture(t)

	tests := []struct {
		name     string
		id       string
		input    document.SaveSectionInput
		wantCode string
	}{
		{"unsupported_language", fx.document.ID, document.SaveSectionInput{Language: "fr", SectionID: "definition"}, "VALIDATION_ERROR"},
		{"unknown_section", fx.document.ID, document.SaveSectionInput{Language: "en", SectionID: "etiology"}, "VALIDATION_ERROR"},
		{"missing_section", fx.document.ID, document.SaveSectionInput{Language: "en"}, "VALIDATION_ERROR"},
		{"unknown_document", "0190f0a4-0000-7000-8000-000000000000", document.SaveSectionInput{Language: "en", SectionID: "definition"}, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.service.SaveSection(context.Background(), tt.id, tt.input, alice)
			assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
		})
	}

	stored, err := fx.repository.FindByID(context.Background(), fx.document.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
}

/*
TestService_SaveSection_ConcurrentPairs saves two languages of the same section
at once; neither write is lost and each save bumps the version.
*/
func TestService_SaveSection_ConcurrentPairs(t *testing.T) {
	fx := newFixture(t)

	var wg sync.WaitGroup
	for _, lang := range []string{"pt", "es"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.SaveSection(context.Background(), fx.document.ID, document.SaveSectionInput{
				Language: lang, SectionID: "prognosis", Content: document.TextValue("texto " + lang),
			}, alice)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := fx.service.GetDocument(context.Background(), fx.document.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Version)
	assert.Equal(t, "texto pt", stored.Sections[document.SectionPrognosis].Content[language.Portuguese].Text)
	assert.Equal(t, "texto es", stored.Sections[document.SectionPrognosis].Content[language.Spanish].Text)
}

func TestService_SaveAndTranslate_DefaultTargets(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.service.SaveAndTranslate(context.Background(), fx.document.ID, document.SaveAndTranslateInput{
		SectionID: "epidemiology",
		Content:   document.TextValue("Peak incidence at 40 years."),
	}, alice)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TranslationsCount)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, language.Portuguese, result.Outcomes[0].Language)
	assert.Equal(t, language.Spanish, result.Outcomes[1].Language)
	assert.Equal(t, 2, result.Document.Version)

	section := result.Document.Sections[document.SectionEpidemiology]
	assert.Equal(t, "[pt] Peak incidence at 40 years.", section.Content[language.Portuguese].Text)
	assert.Equal(t, language.English, section.EditMeta[language.Portuguese].TranslatedFrom)
}

func TestService_SaveAndTranslate_AllTargetsFail(t *testing.T) {
	fx := newFixture(t)
	fx.translator.fail[language.Portuguese] = errQuota
	fx.translator.fail[language.Spanish] = errQuota

	result, err := fx.service.SaveAndTranslate(context.Background(), fx.document.ID, document.SaveAndTranslateInput{
		SourceLanguage:  "en",
		SectionID:       "definition",
		Content:         document.TextValue("Updated definition."),
		TargetLanguages: []string{"pt", "es"},
	}, alice)
	require.NoError(t, err)

	assert.Equal(t, 0, result.TranslationsCount)
	for _, outcome := range result.Outcomes {
		assert.False(t, outcome.OK())
	}

	section := result.Document.Sections[document.SectionDefinition]
	assert.Equal(t, "Updated definition.", section.Content[language.English].Text)
	assert.Equal(t, "Sobrecarga dos extensores.", section.Content[language.Portuguese].Text)
	assert.Equal(t, 2, result.Document.Version)
}

func TestService_SetSectionMedia(t *testing.T) {
	fx := newFixture(t)

	saved, err := fx.service.SetSectionMedia(context.Background(), fx.document.ID, document.SectionMediaInput{
		SectionID: "imaging_findings",
		Media: []document.MediaItem{
			{URL: "https://cdn.example.org/us.png", Kind: document.MediaImage, Description: "Ultrasound"},
			{URL: "/media/exam.mp4", Kind: document.MediaVideo, SizePercent: 50, Alignment: document.AlignLeft},
		},
	}, alice)
	require.NoError(t, err)

	media := saved.Sections[document.SectionImagingFindings].Media
	require.Len(t, media, 2)
	assert.Equal(t, 100, media[0].SizePercent)
	assert.Equal(t, document.AlignCenter, media[0].Alignment)
	assert.Equal(t, document.AlignLeft, media[1].Alignment)

	_, err = fx.service.SetSectionMedia(context.Background(), fx.document.ID, document.SectionMediaInput{
		SectionID: "imaging_findings",
		Media:     []document.MediaItem{{URL: "ftp://x", Kind: "audio", SizePercent: 5, Alignment: "top"}},
	}, alice)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Len(t, appErr.Details, 4)
}

func TestService_TranslateDocument(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.service.TranslateDocument(context.Background(), fx.document.ID, document.TranslateDocumentInput{TargetLanguage: "es"}, alice)
	require.NoError(t, err)

	assert.Equal(t, []document.SectionID{document.SectionDefinition, document.SectionReferences}, result.TranslatedSections)
	assert.Empty(t, result.FailedSections)
	assert.Equal(t, "[es] Lateral Epicondylitis", result.Document.Name[language.Spanish])
	assert.Equal(t, 2, result.Document.Version)
	assert.Equal(t, []string{"[es] Smith J. Elbow. 2020.", "[es] Doe A. Tendons. 2019."},
		result.Document.Sections[document.SectionReferences].Content[language.Spanish].Entries)
}

func TestService_TranslateDocument_Rejects(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.TranslateDocument(context.Background(), fx.document.ID, document.TranslateDocumentInput{TargetLanguage: "en"}, alice)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	fx.translator.fail[language.Spanish] = errQuota
	_, err = fx.service.TranslateDocument(context.Background(), fx.document.ID, document.TranslateDocumentInput{TargetLanguage: "es"}, alice)
	assert.True(t, apperr.HasCode(err, "UPSTREAM_FAILURE"))

	stored, err := fx.repository.FindByID(context.Background(), fx.document.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
}

func TestService_RenderSection(t *testing.T) {
	fx := newFixture(t)

	rendered, err := fx.service.RenderSection(context.Background(), fx.document.ID, "definition", language.Spanish)
	require.NoError(t, err)
	assert.True(t, rendered.Fallback)
	assert.Equal(t, "<p>Overuse of the <strong>wrist extensors</strong>.</p>", rendered.HTML)

	refs, err := fx.service.RenderSection(context.Background(), fx.document.ID, "references", language.English)
	require.NoError(t, err)
	assert.False(t, refs.Fallback)
	assert.Equal(t, "<ol><li>Smith J. Elbow. 2020.</li><li>Doe A. Tendons. 2019.</li></ol>", refs.HTML)
}

func TestService_CreateDocument(t *testing.T) {
	fx := newFixture(t)

	created, err := fx.service.CreateDocument(context.Background(), &document.Document{
		Name: map[language.Code]string{language.English: "Plantar Fasciitis"},
		Sections: map[document.SectionID]*document.Section{
			document.SectionDefinition: {Content: map[language.Code]document.Value{language.English: document.TextValue("Heel pain.")}},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, document.KindText, created.Sections[document.SectionDefinition].Kind)

	_, err = fx.service.CreateDocument(context.Background(), &document.Document{Name: map[language.Code]string{}})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = fx.service.CreateDocument(context.Background(), seedDocument())
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
}
