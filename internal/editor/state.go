// Copyright (c) 2026 PMR Atlas. All rights reserved.

package editor

import (
	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
)

// Phase names a controller state.
type Phase string

const (
	PhaseViewing     Phase = "viewing"
	PhaseEditing     Phase = "editing_draft"
	PhaseSaving      Phase = "saving"
	PhaseConfirming  Phase = "confirming_translation"
	PhaseTranslating Phase = "translating"
)

// State is the controller state. The set of implementations is closed.
type State interface {
	Phase() Phase
	state()
}

// Viewing is the idle state: nothing is being edited.
type Viewing struct{}

// EditingDraft holds an unsaved draft of one section in one language.
type EditingDraft struct {
	Section  document.SectionID
	Language language.Code
	Draft    string
}

// Saving is a single-language save in flight.
type Saving struct {
	Section  document.SectionID
	Language language.Code
	Draft    string
}

// ConfirmingTranslation waits for the user to approve overwriting Targets.
type ConfirmingTranslation struct {
	Section  document.SectionID
	Language language.Code
	Draft    string
	Targets  []language.Code
}

// Translating is a save-and-translate in flight. An empty Section means a
// whole-document translation into Language.
type Translating struct {
	Section  document.SectionID
	Language language.Code
	Draft    string
	Targets  []language.Code
}

func (Viewing) Phase() Phase               { return PhaseViewing }
func (EditingDraft) Phase() Phase          { return PhaseEditing }
func (Saving) Phase() Phase                { return PhaseSaving }
func (ConfirmingTranslation) Phase() Phase { return PhaseConfirming }
func (Translating) Phase() Phase           { return PhaseTranslating }

func (Viewing) state()               {}
func (EditingDraft) state()          {}
func (Saving) state()                {}
func (ConfirmingTranslation) state() {}
func (Translating) state()           {}

// inFlight reports whether a network call owns the session.
func inFlight(state State) bool {
	switch state.(type) {
	case Saving, Translating:
		return true
	}
	return false
}
