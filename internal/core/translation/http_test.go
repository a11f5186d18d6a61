// Copyright (c) 2026 PMR Atlas. All rights reserved.

package translation_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/platform/ctxutil"
	"github.com/carolinavmo/pmr-atlas/internal/platform/sec"
)

/*
TestHandler_Translate checks validation and the response shape of ad-hoc
translations.
*/
func TestHandler_Translate(t *testing.T) {
	tests := []struct {
		name       string
		translator translation.Translator
		role       sec.UserRole
		body       string
		wantStatus int
		wantBody   string
	}{
		{"ok", &scriptedTranslator{}, sec.RoleEditor, `{"text":"Pain","source_language":"en","target_language":"es"}`, http.StatusOK, `"translated_text":"es:Pain"`},
		{"viewer_forbidden", &scriptedTranslator{}, sec.RoleViewer, `{"text":"Pain","source_language":"en","target_language":"es"}`, http.StatusForbidden, `"FORBIDDEN"`},
		{"same_language", &scriptedTranslator{}, sec.RoleAdmin, `{"text":"Pain","source_language":"en","target_language":"en-GB"}`, http.StatusBadRequest, `"target_language"`},
		{"missing_text", &scriptedTranslator{}, sec.RoleAdmin, `{"source_language":"en","target_language":"pt"}`, http.StatusBadRequest, `"text"`},
		{"not_configured", translation.Unavailable{}, sec.RoleAdmin, `{"text":"Pain","source_language":"en","target_language":"pt"}`, http.StatusServiceUnavailable, `"SERVICE_UNAVAILABLE"`},
		{"upstream_error", &scriptedTranslator{fail: map[language.Code]error{language.Portuguese: errUpstream}}, sec.RoleAdmin, `{"text":"Pain","source_language":"en","target_language":"pt"}`, http.StatusInternalServerError, `"INTERNAL_ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "u-1", Role: string(tt.role)}))
			recorder := httptest.NewRecorder()

			translation.NewHandler(tt.translator).Routes().ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.wantBody)
		})
	}
}
