// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package translation fans section content out to machine translation.

A [Translator] turns one piece of text from a source language into a target
language. The [Orchestrator] drives a translator over every segment of a
section for several targets at once and reports a per-language [Outcome];
a failure for one target never affects the others and nothing is retried.
*/
package translation

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
)

// ErrNotConfigured is returned by [Unavailable] when no translator backend is set up.
var ErrNotConfigured = apperr.ServiceUnavailable("Machine translation is not configured")

// Translator translates a single piece of markup text.
type Translator interface {
	Translate(context context.Context, text string, source, target language.Code) (string, error)
}

// Unavailable is the translator used when no backend is configured.
type Unavailable struct{}

// Translate always fails with [ErrNotConfigured].
func (Unavailable) Translate(context.Context, string, language.Code, language.Code) (string, error) {
	return "", ErrNotConfigured
}

// # Requests

// Request asks for one section to be translated into several languages.
type Request struct {
	DocumentID string
	SectionID  string
	Source     language.Code
	Segments   []string
	Targets    []language.Code
}

// Outcome is the result of one target language. Segments is set only on
// success and has the same length as the request segments.
type Outcome struct {
	Language language.Code
	Segments []string
	Err      error
}

// OK reports whether the target was translated.
func (outcome Outcome) OK() bool { return outcome.Err == nil }

type outcomeJSON struct {
	Language language.Code `json:"language"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// MarshalJSON reports the language and status; translated text travels with
// the document, not the outcome.
func (outcome Outcome) MarshalJSON() ([]byte, error) {
	wire := outcomeJSON{Language: outcome.Language, Success: outcome.OK()}
	if outcome.Err != nil {
		wire.Error = outcome.Err.Error()
	}
	return json.Marshal(wire)
}

// UnmarshalJSON restores a failed outcome's error from its message.
func (outcome *Outcome) UnmarshalJSON(data []byte) error {
	var wire outcomeJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*outcome = Outcome{Language: wire.Language}
	if !wire.Success {
		message := wire.Error
		if message == "" {
			message = "translation failed"
		}
		outcome.Err = errors.New(message)
	}
	return nil
}

// Succeeded counts the successful outcomes.
func Succeeded(outcomes []Outcome) int {
	count := 0
	for _, outcome := range outcomes {
		if outcome.OK() {
			count++
		}
	}
	return count
}

// Failed returns the languages whose translation failed.
func Failed(outcomes []Outcome) []language.Code {
	var failed []language.Code
	for _, outcome := range outcomes {
		if !outcome.OK() {
			failed = append(failed, outcome.Language)
		}
	}
	return failed
}
