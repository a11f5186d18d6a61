// Copyright (c) 2026 PMR Atlas. All rights reserved.

package translation

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/constants"
	"github.com/carolinavmo/pmr-atlas/internal/platform/middleware"
	requestutil "github.com/carolinavmo/pmr-atlas/internal/platform/request"
	"github.com/carolinavmo/pmr-atlas/internal/platform/respond"
	"github.com/carolinavmo/pmr-atlas/internal/platform/sec"
	"github.com/carolinavmo/pmr-atlas/internal/platform/validate"
)

const maxTextChars = 20_000

// TextRequest is the body of an ad-hoc translation.
type TextRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// TextResponse carries the translated text.
type TextResponse struct {
	TranslatedText string        `json:"translated_text"`
	SourceLanguage language.Code `json:"source_language"`
	TargetLanguage language.Code `json:"target_language"`
}

type Handler struct {
	translator Translator
}

func NewHandler(translator Translator) *Handler {
	return &Handler{translator: translator}
}

// Routes returns the router mounted at /translate.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleEditor))
	router.Use(chimiddleware.Timeout(constants.TranslationRequestTimeout))
	router.Post("/", handler.translate)
	return router
}

func (handler *Handler) translate(writer http.ResponseWriter, request *http.Request) {
	var input TextRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("text", input.Text).MaxLen("text", input.Text, maxTextChars)

	source, sourceErr := language.Parse(input.SourceLanguage)
	target, targetErr := language.Parse(input.TargetLanguage)
	allowed := fmt.Sprintf("Must be one of: %s", strings.Join(language.Strings(), ", "))
	validator.Custom("source_language", sourceErr != nil, allowed)
	validator.Custom("target_language", targetErr != nil, allowed)
	validator.Custom("target_language", sourceErr == nil && source == target, "Must differ from source_language")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	translated, err := handler.translator.Translate(request.Context(), input.Text, source, target)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, TextResponse{TranslatedText: translated, SourceLanguage: source, TargetLanguage: target})
}
