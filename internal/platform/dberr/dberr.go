// Copyright (c) 2026 PMR Atlas. All rights reserved.

// Package dberr maps low-level database errors onto [apperr.AppError].
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
)

// SQLSTATE codes the content store reacts to.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// Wrap classifies a database error. Missing rows become NotFound for the named
// resource; constraint violations become Conflict or Unprocessable; anything
// else is an Internal error tagged with the action that failed.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case uniqueViolation:
			return apperr.Conflict(resource + " already exists")
		case foreignKeyViolation, checkViolation:
			return apperr.Unprocessable(fmt.Sprintf("%s violates constraint %s", resource, pgError.ConstraintName))
		}
	}

	return apperr.Internal(fmt.Errorf("postgres: %s: %w", action, err))
}
