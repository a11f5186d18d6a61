// Copyright (c) 2026 PMR Atlas. All rights reserved.

package language

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
	"github.com/carolinavmo/pmr-atlas/internal/platform/respond"
)

// Handler exposes the language catalogue.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Routes returns the router mounted at /languages.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listLanguages)
	router.Get("/{code}", handler.getLanguage)
	return router
}

func (handler *Handler) listLanguages(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, List())
}

func (handler *Handler) getLanguage(writer http.ResponseWriter, request *http.Request) {
	code, err := Parse(chi.URLParam(request, "code"))
	if err != nil {
		respond.Error(writer, request, apperr.NotFound("Language"))
		return
	}

	entry, _ := Get(code)
	respond.OK(writer, entry)
}
