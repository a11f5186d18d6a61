// Copyright (c) 2026 PMR Atlas. All rights reserved.

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carolinavmo/pmr-atlas/internal/platform/constants"
	"github.com/carolinavmo/pmr-atlas/internal/platform/ctxutil"
	"github.com/carolinavmo/pmr-atlas/internal/platform/middleware"
	"github.com/carolinavmo/pmr-atlas/internal/platform/sec"
)

type stubVerifier map[string]*sec.AuthClaims

func (verifier stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, ok := verifier[token]; ok {
		return claims, nil
	}
	return nil, errors.New("bad token")
}

func okHandler(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
}

/*
TestAuthorization walks Authenticate and RequireRole through each identity case.
*/
func TestAuthorization(t *testing.T) {
	verifier := stubVerifier{
		"admin-token":  {UserID: "u-1", Role: string(sec.RoleAdmin)},
		"viewer-token": {UserID: "u-2", Role: string(sec.RoleViewer)},
	}

	handler := middleware.Authenticate(verifier)(
		middleware.RequireRole(sec.RoleEditor)(http.HandlerFunc(okHandler)),
	)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"bad_token", "Bearer nope", http.StatusUnauthorized},
		{"insufficient_role", "Bearer viewer-token", http.StatusForbidden},
		{"admin_passes", "Bearer admin-token", http.StatusOK},
		{"scheme_case_insensitive", "bearer admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPut, "/documents/1/inline-save", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

func TestAuthenticate_InjectsClaims(t *testing.T) {
	verifier := stubVerifier{"t": {UserID: "u-9", Name: "Dr. Rui"}}

	var gotName string
	handler := middleware.Authenticate(verifier)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, gotName, _ = ctxutil.GetActor(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer t")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.Equal(t, "Dr. Rui", gotName)
}

type corsConfig struct{ development bool }

func (cfg corsConfig) IsDevelopment() bool      { return cfg.development }
func (cfg corsConfig) OriginSuffixes() []string { return []string{"pmr-atlas.app"} }

/*
TestCORS checks origin allow-listing outside development.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(corsConfig{development: false})(http.HandlerFunc(okHandler))

	allowed := httptest.NewRequest(http.MethodGet, "/", nil)
	allowed.Header.Set(constants.HeaderOrigin, "https://editor.pmr-atlas.app")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, allowed)
	assert.Equal(t, "https://editor.pmr-atlas.app", recorder.Header().Get("Access-Control-Allow-Origin"))

	denied := httptest.NewRequest(http.MethodGet, "/", nil)
	denied.Header.Set(constants.HeaderOrigin, "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, denied)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/", nil)
	preflight.Header.Set(constants.HeaderOrigin, "https://editor.pmr-atlas.app")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, preflight)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRequestID_ReusesHeader(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "abc")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", recorder.Header().Get(constants.HeaderXRequestID))
}
