// Copyright (c) 2026 PMR Atlas. All rights reserved.

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
	"github.com/carolinavmo/pmr-atlas/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, "CONFLICT", http.StatusConflict},
		{"check", &pgconn.PgError{Code: "23514", ConstraintName: "media_size"}, "UNPROCESSABLE", http.StatusUnprocessableEntity},
		{"other", errors.New("connection reset"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := apperr.As(dberr.Wrap(tt.err, "Document", "find_document"))
			if assert.NotNil(t, wrapped) {
				assert.Equal(t, tt.wantCode, wrapped.Code)
				assert.Equal(t, tt.wantStatus, wrapped.HTTPStatus)
			}
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "Document", "noop"))
}
