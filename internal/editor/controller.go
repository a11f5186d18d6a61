// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package editor implements the edit session of one open document.

A [Controller] owns the document as last fetched from the server, the
language being displayed and exactly one [State]. Only one section can hold a
draft at a time, and nothing else starts while a save or translation is in
flight. Calls run outside the controller lock; a result that completes after
Close is dropped. After every confirmed write the document is fetched again
so the view shows what the server stored.
*/
package editor

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/markup"
)

// Backend is the server the controller talks to.
type Backend interface {
	FetchDocument(context context.Context, id string) (*document.Document, error)
	SaveSection(context context.Context, id string, input document.SaveSectionInput) (*document.Document, error)
	SaveAndTranslate(context context.Context, id string, input document.SaveAndTranslateInput) (*document.TranslationResult, error)
	TranslateDocument(context context.Context, id string, input document.TranslateDocumentInput) (*document.DocumentTranslationResult, error)
}

// Controller drives the edit session of one document.
type Controller struct {
	backend    Backend
	documentID string
	logger     *slog.Logger

	mutex     sync.Mutex
	document  *document.Document
	lang      language.Code
	state     State
	lastErr   error
	epoch     uint64
	closed    bool
	listeners []func(State)
}

// NewController creates a controller showing lang. Call Load before editing.
func NewController(backend Backend, documentID string, lang language.Code, logger *slog.Logger) *Controller {
	if !lang.IsValid() {
		lang = language.Base
	}
	return &Controller{
		backend:    backend,
		documentID: documentID,
		logger:     logger.With(slog.String("document_id", documentID)),
		lang:       lang,
		state:      Viewing{},
	}
}

// # Accessors

// Document returns a copy of the last fetched document, or nil before Load.
func (controller *Controller) Document() *document.Document {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()

	if controller.document == nil {
		return nil
	}
	return controller.document.Clone()
}

func (controller *Controller) Language() language.Code {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.lang
}

func (controller *Controller) State() State {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.state
}

// LastError returns the error of the last failed operation. It is cleared by
// the next successful save or translation.
func (controller *Controller) LastError() error {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.lastErr
}

// Draft returns the current draft, if a draft exists.
func (controller *Controller) Draft() (string, bool) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()

	switch state := controller.state.(type) {
	case EditingDraft:
		return state.Draft, true
	case Saving:
		return state.Draft, true
	case ConfirmingTranslation:
		return state.Draft, true
	case Translating:
		return state.Draft, state.Section != ""
	}
	return "", false
}

// OnChange registers fn to be called after every state change. Listeners run
// outside the controller lock, in registration order.
func (controller *Controller) OnChange(fn func(State)) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	controller.listeners = append(controller.listeners, fn)
}

// # Loading

// Load fetches the document and shows it.
func (controller *Controller) Load(context context.Context) error {
	controller.mutex.Lock()
	if err := controller.checkOpen(); err != nil {
		controller.mutex.Unlock()
		return err
	}
	if _, ok := controller.state.(Viewing); !ok {
		controller.mutex.Unlock()
		return ErrBusy
	}
	epoch := controller.epoch
	controller.mutex.Unlock()

	fetched, err := controller.backend.FetchDocument(context, controller.documentID)

	controller.mutex.Lock()
	if controller.stale(epoch) {
		controller.mutex.Unlock()
		return nil
	}
	if err != nil {
		controller.lastErr = err
		controller.mutex.Unlock()
		return err
	}
	controller.document = fetched
	controller.mutex.Unlock()

	controller.notify()
	return nil
}

// # Drafts

/*
StartEdit opens a draft of section in the displayed language.

Description: The draft is seeded from the section content with base-language
fallback. Text drafts hold the stored markup byte for byte; reference drafts
hold one entry per line. Starting an edit of the section already being drafted is a no-op.

Returns:
  - error: ErrBusy if another section is active or a call is in flight
*/
func (controller *Controller) StartEdit(section document.SectionID) error {
	controller.mutex.Lock()

	if err := controller.checkOpen(); err != nil {
		controller.mutex.Unlock()
		return err
	}
	if controller.document == nil {
		controller.mutex.Unlock()
		return ErrNotLoaded
	}

	switch state := controller.state.(type) {
	case Viewing:
	case EditingDraft:
		controller.mutex.Unlock()
		if state.Section == section {
			return nil
		}
		return ErrBusy
	default:
		controller.mutex.Unlock()
		return ErrBusy
	}

	value, err := controller.document.Content(section, controller.lang)
	if err != nil {
		controller.mutex.Unlock()
		return err
	}

	controller.state = EditingDraft{Section: section, Language: controller.lang, Draft: seedDraft(value)}
	controller.mutex.Unlock()

	controller.logger.Debug("edit_started", slog.String("section_id", string(section)), slog.String("language", string(controller.Language())))
	controller.notify()
	return nil
}

// SetDraft replaces the draft text.
func (controller *Controller) SetDraft(text string) error {
	controller.mutex.Lock()

	state, ok := controller.state.(EditingDraft)
	if !ok {
		controller.mutex.Unlock()
		return ErrNotEditing
	}
	state.Draft = strings.ReplaceAll(text, "\r\n", "\n")
	controller.state = state
	controller.mutex.Unlock()

	controller.notify()
	return nil
}

// SetDraftBlocks replaces the draft with the markup of blocks.
func (controller *Controller) SetDraftBlocks(blocks []markup.Block) error {
	return controller.SetDraft(markup.Encode(blocks))
}

// DraftBlocks returns the draft decoded into blocks.
func (controller *Controller) DraftBlocks() ([]markup.Block, bool) {
	draft, ok := controller.Draft()
	if !ok {
		return nil, false
	}
	return markup.Decode(draft), true
}

/*
Cancel discards the draft and returns to Viewing.

Returns:
  - error: ErrBusy while a save or translation is in flight
*/
func (controller *Controller) Cancel() error {
	controller.mutex.Lock()
	if _, ok := controller.state.(Viewing); ok {
		controller.mutex.Unlock()
		return nil
	}
	if inFlight(controller.state) {
		controller.mutex.Unlock()
		return ErrBusy
	}
	controller.epoch++
	controller.state = Viewing{}
	controller.mutex.Unlock()

	controller.notify()
	return nil
}

/*
SwitchLanguage changes the displayed language. A draft is bound to the
language it was seeded from, so any draft is discarded without saving.

Returns:
  - error: ErrBusy while a save or translation is in flight
*/
func (controller *Controller) SwitchLanguage(lang language.Code) error {
	if !lang.IsValid() {
		return language.ErrUnsupported
	}

	controller.mutex.Lock()
	if err := controller.checkOpen(); err != nil {
		controller.mutex.Unlock()
		return err
	}
	if inFlight(controller.state) {
		controller.mutex.Unlock()
		return ErrBusy
	}

	if _, ok := controller.state.(Viewing); !ok {
		controller.logger.Info("draft_discarded", slog.String("reason", "language_switch"))
	}
	controller.epoch++
	controller.lang = lang
	controller.state = Viewing{}
	controller.mutex.Unlock()

	controller.notify()
	return nil
}

// # Saving

/*
Save persists the draft in its language only.

Description: On success the document is fetched again and the controller
returns to Viewing. On failure the controller returns to EditingDraft with
the draft intact and the error recorded. A result that arrives after Close
is dropped and Save returns nil.
*/
func (controller *Controller) Save(context context.Context) error {
	controller.mutex.Lock()
	state, ok := controller.state.(EditingDraft)
	if !ok {
		controller.mutex.Unlock()
		return ErrNotEditing
	}
	controller.state = Saving(state)
	epoch := controller.epoch
	controller.mutex.Unlock()
	controller.notify()

	_, err := controller.backend.SaveSection(context, controller.documentID, document.SaveSectionInput{
		Language:  string(state.Language),
		SectionID: string(state.Section),
		Content:   draftValue(state.Section, state.Draft),
	})
	if err != nil {
		return controller.fail(epoch, state, err)
	}

	controller.logger.Info("section_save_confirmed", slog.String("section_id", string(state.Section)), slog.String("language", string(state.Language)))
	return controller.finish(context, epoch, nil)
}

// RequestTranslation asks to save the draft and translate it into targets,
// or into every other language when none are given. Nothing is written
// until ConfirmTranslation.
func (controller *Controller) RequestTranslation(targets ...language.Code) error {
	for _, target := range targets {
		if !target.IsValid() {
			return language.ErrUnsupported
		}
	}

	controller.mutex.Lock()
	state, ok := controller.state.(EditingDraft)
	if !ok {
		controller.mutex.Unlock()
		return ErrNotEditing
	}
	if len(targets) == 0 {
		targets = otherLanguages(state.Language)
	}
	controller.state = ConfirmingTranslation{Section: state.Section, Language: state.Language, Draft: state.Draft, Targets: targets}
	controller.mutex.Unlock()

	controller.notify()
	return nil
}

// CancelTranslation declines the confirmation and returns to the draft.
func (controller *Controller) CancelTranslation() error {
	controller.mutex.Lock()
	state, ok := controller.state.(ConfirmingTranslation)
	if !ok {
		controller.mutex.Unlock()
		return ErrNotConfirming
	}
	controller.state = EditingDraft{Section: state.Section, Language: state.Language, Draft: state.Draft}
	controller.mutex.Unlock()

	controller.notify()
	return nil
}

/*
ConfirmTranslation saves the draft and fans it out to the confirmed targets.

Description: Targets that fail do not fail the call: the source and the other
targets are stored, the controller returns to Viewing and LastError holds a
[*PartialTranslationError]. A transport failure returns to EditingDraft with
the draft intact.

Returns:
  - []translation.Outcome: Per-target outcomes, nil on failure
  - error: ErrNotConfirming or the transport error
*/
func (controller *Controller) ConfirmTranslation(context context.Context) ([]translation.Outcome, error) {
	controller.mutex.Lock()
	state, ok := controller.state.(ConfirmingTranslation)
	if !ok {
		controller.mutex.Unlock()
		return nil, ErrNotConfirming
	}
	controller.state = Translating(state)
	epoch := controller.epoch
	controller.mutex.Unlock()
	controller.notify()

	targets := make([]string, len(state.Targets))
	for i, target := range state.Targets {
		targets[i] = string(target)
	}

	result, err := controller.backend.SaveAndTranslate(context, controller.documentID, document.SaveAndTranslateInput{
		SourceLanguage:  string(state.Language),
		SectionID:       string(state.Section),
		Content:         draftValue(state.Section, state.Draft),
		TargetLanguages: targets,
	})
	if err != nil {
		return nil, controller.fail(epoch, EditingDraft{Section: state.Section, Language: state.Language, Draft: state.Draft}, err)
	}

	var partial error
	if failed := translation.Failed(result.Outcomes); len(failed) > 0 {
		partial = &PartialTranslationError{Failed: failed}
		controller.logger.Warn("translation_partially_failed", slog.String("section_id", string(state.Section)), slog.Any("failed", failed))
	}

	if err := controller.finish(context, epoch, partial); err != nil {
		return result.Outcomes, err
	}
	return result.Outcomes, nil
}

/*
TranslateMissingLanguage translates the whole document into the displayed
language when that language has no content of its own yet.

Returns:
  - bool: Whether a translation ran
  - error: ErrBusy unless Viewing, or the transport error
*/
func (controller *Controller) TranslateMissingLanguage(context context.Context) (bool, error) {
	controller.mutex.Lock()
	if err := controller.checkOpen(); err != nil {
		controller.mutex.Unlock()
		return false, err
	}
	if controller.document == nil {
		controller.mutex.Unlock()
		return false, ErrNotLoaded
	}
	if _, ok := controller.state.(Viewing); !ok {
		controller.mutex.Unlock()
		return false, ErrBusy
	}
	lang := controller.lang
	if !controller.document.MissingLanguage(lang) {
		controller.mutex.Unlock()
		return false, nil
	}
	controller.state = Translating{Language: lang}
	epoch := controller.epoch
	controller.mutex.Unlock()
	controller.notify()

	_, err := controller.backend.TranslateDocument(context, controller.documentID, document.TranslateDocumentInput{TargetLanguage: string(lang)})
	if err != nil {
		return true, controller.fail(epoch, Viewing{}, err)
	}

	controller.logger.Info("document_translation_confirmed", slog.String("language", string(lang)))
	return true, controller.finish(context, epoch, nil)
}

// Close ends the session. Results of calls still in flight are dropped.
func (controller *Controller) Close() {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()

	controller.closed = true
	controller.epoch++
	controller.state = Viewing{}
	controller.listeners = nil
}

// # Internals

// finish re-fetches the document after a confirmed write and returns to
// Viewing. A failed fetch is recorded; the write itself succeeded.
func (controller *Controller) finish(context context.Context, epoch uint64, outcome error) error {
	fetched, fetchErr := controller.backend.FetchDocument(context, controller.documentID)

	controller.mutex.Lock()
	if controller.stale(epoch) {
		controller.mutex.Unlock()
		return nil
	}
	if fetchErr == nil {
		controller.document = fetched
	}
	controller.lastErr = outcome
	if fetchErr != nil {
		controller.lastErr = fetchErr
	}
	controller.state = Viewing{}
	controller.mutex.Unlock()

	controller.notify()
	return fetchErr
}

// fail returns to fallback after a failed call, keeping the draft.
func (controller *Controller) fail(epoch uint64, fallback State, err error) error {
	controller.mutex.Lock()
	if controller.stale(epoch) {
		controller.mutex.Unlock()
		return nil
	}
	controller.lastErr = err
	controller.state = fallback
	controller.mutex.Unlock()

	controller.logger.Warn("edit_call_failed", slog.String("phase", string(fallback.Phase())), slog.Any("error", err))
	controller.notify()
	return err
}

func (controller *Controller) stale(epoch uint64) bool {
	return controller.closed || controller.epoch != epoch
}

func (controller *Controller) checkOpen() error {
	if controller.closed {
		return ErrClosed
	}
	return nil
}

func (controller *Controller) notify() {
	controller.mutex.Lock()
	if controller.closed {
		controller.mutex.Unlock()
		return
	}
	state := controller.state
	listeners := append([]func(State){}, controller.listeners...)
	controller.mutex.Unlock()

	for _, listener := range listeners {
		listener(state)
	}
}

func seedDraft(value document.Value) string {
	if value.Kind == document.KindReference {
		return strings.Join(value.Entries, "\n")
	}
	return value.Text
}

func draftValue(section document.SectionID, draft string) document.Value {
	return document.TextValue(draft).As(section.Kind())
}

func otherLanguages(source language.Code) []language.Code {
	var targets []language.Code
	for _, code := range language.All() {
		if code != source {
			targets = append(targets, code)
		}
	}
	return targets
}
