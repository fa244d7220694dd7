package handler

import (
	"net/http"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves the static industry/template/option catalog.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// ListIndustries handles GET /api/catalog/industries.
func (h *CatalogHandler) ListIndustries(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, domain.AvailableIndustries())
}

// ListTemplates handles GET /api/catalog/industries/{id}/templates.
func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	industry := domain.GetIndustry(id)
	if industry == nil {
		Error(w, domain.ErrNotFound("industry not found"))
		return
	}

	JSON(w, http.StatusOK, industry.Templates)
}

// ListOptions handles GET /api/catalog/options.
func (h *CatalogHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, domain.AvailableTemplateOptions())
}
