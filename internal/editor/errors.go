// Copyright (c) 2026 PMR Atlas. All rights reserved.

package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
)

var (
	// ErrNotLoaded is returned before the first successful Load.
	ErrNotLoaded = errors.New("editor: document not loaded")

	// ErrBusy is returned when another section is being edited or a call is in flight.
	ErrBusy = errors.New("editor: another edit is in progress")

	// ErrNotEditing is returned when an operation needs a draft and there is none.
	ErrNotEditing = errors.New("editor: no draft is being edited")

	// ErrNotConfirming is returned when no translation is awaiting confirmation.
	ErrNotConfirming = errors.New("editor: no translation awaiting confirmation")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("editor: session closed")
)

// PartialTranslationError reports the languages a save-and-translate could
// not write. The source language and the other targets were saved.
type PartialTranslationError struct {
	Failed []language.Code
}

func (err *PartialTranslationError) Error() string {
	codes := make([]string, len(err.Failed))
	for i, code := range err.Failed {
		codes[i] = string(code)
	}
	return fmt.Sprintf("editor: translation failed for %s", strings.Join(codes, ", "))
}
