// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/constants"
	"github.com/carolinavmo/pmr-atlas/internal/platform/middleware"
	requestutil "github.com/carolinavmo/pmr-atlas/internal/platform/request"
	"github.com/carolinavmo/pmr-atlas/internal/platform/respond"
	"github.com/carolinavmo/pmr-atlas/internal/platform/sec"
	"github.com/carolinavmo/pmr-atlas/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the document router, mounted at /documents.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Group(func(readRoute chi.Router) {
		readRoute.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))

		readRoute.Get("/{id}", handler.getDocument)
		readRoute.Get("/{id}/versions", handler.listVersions)
		readRoute.Get("/{id}/sections/{sectionID}/render", handler.renderSection)
	})

	// Admin only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleAdmin))

		adminRoute.With(chimiddleware.Timeout(constants.GlobalRequestTimeout)).Put("/{id}/inline-save", handler.saveSection)
		adminRoute.With(chimiddleware.Timeout(constants.GlobalRequestTimeout)).Put("/{id}/section-media", handler.setSectionMedia)
		adminRoute.With(chimiddleware.Timeout(constants.TranslationRequestTimeout)).Put("/{id}/inline-save-translate", handler.saveAndTranslate)
	})

	// Editors and admins
	router.With(
		middleware.RequireRole(sec.RoleEditor),
		chimiddleware.Timeout(constants.TranslationRequestTimeout),
	).Post("/{id}/translate", handler.translateDocument)
}

func (handler *Handler) getDocument(writer http.ResponseWriter, request *http.Request) {
	document, err := handler.service.GetDocument(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, document)
}

func (handler *Handler) listVersions(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	versions, total, err := handler.service.ListVersions(request.Context(), requestutil.Param(request, "id"), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, versions, pagination.NewMeta(paginationParams, total))
}

func (handler *Handler) renderSection(writer http.ResponseWriter, request *http.Request) {
	lang := language.Match(request.Header.Get(constants.HeaderAcceptLanguage))
	if raw := request.URL.Query().Get("lang"); raw != "" {
		parsed, err := language.Parse(raw)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		lang = parsed
	}

	rendered, err := handler.service.RenderSection(request.Context(), requestutil.Param(request, "id"), requestutil.Param(request, "sectionID"), lang)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, rendered)
}

func (handler *Handler) saveSection(writer http.ResponseWriter, request *http.Request) {
	editor, err := editorFrom(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SaveSectionInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	document, err := handler.service.SaveSection(request.Context(), requestutil.Param(request, "id"), input, editor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, document)
}

func (handler *Handler) saveAndTranslate(writer http.ResponseWriter, request *http.Request) {
	editor, err := editorFrom(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SaveAndTranslateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.SaveAndTranslate(request.Context(), requestutil.Param(request, "id"), input, editor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) setSectionMedia(writer http.ResponseWriter, request *http.Request) {
	editor, err := editorFrom(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SectionMediaInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	document, err := handler.service.SetSectionMedia(request.Context(), requestutil.Param(request, "id"), input, editor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, document)
}

func (handler *Handler) translateDocument(writer http.ResponseWriter, request *http.Request) {
	editor, err := editorFrom(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input TranslateDocumentInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.TranslateDocument(request.Context(), requestutil.Param(request, "id"), input, editor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func editorFrom(request *http.Request) (Editor, error) {
	id, name, err := requestutil.Actor(request)
	if err != nil {
		return Editor{}, err
	}
	return Editor{ID: id, Name: name}, nil
}
