// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the router's parameter extraction and common body decoding
patterns, ensuring consistent error handling.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
	"github.com/carolinavmo/pmr-atlas/internal/platform/ctxutil"
	"github.com/carolinavmo/pmr-atlas/internal/platform/validate"
)

// maxBodyBytes bounds request bodies; a full section with references fits easily.
const maxBodyBytes = 2 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails or the body is empty
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return validate.ErrEmptyBody
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(request, name))
}

/*
Actor returns the id and display name of the authenticated editor.

Returns:
  - string, string: User id and display name
  - error: apperr.Unauthorized if the request is anonymous
*/
func Actor(request *http.Request) (string, string, error) {
	id, name, ok := ctxutil.GetActor(request.Context())
	if !ok {
		return "", "", apperr.Unauthorized("Authentication required")
	}
	return id, name, nil
}
