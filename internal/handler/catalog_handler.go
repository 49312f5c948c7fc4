package handler

import (
	"net/http"

	"biblioteca-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(s *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: s}
}

// skip/limit como en el resto de listados del catálogo.
func pageParams(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", 100)
	offset = queryInt(r, "skip", 0)
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// @Summary Listar categorías
// @Tags catalog
// @Produce json
// @Param skip query int false "offset"
// @Param limit query int false "límite (default: 100)"
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	items, err := h.svc.Categories(r.Context(), limit, offset)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	list(w, items, "")
}

// @Summary Listar lenguajes
// @Tags catalog
// @Produce json
// @Param skip query int false "offset"
// @Param limit query int false "límite (default: 100)"
// @Success 200 {array} models.Language
// @Router /languages [get]
func (h *CatalogHandler) Languages(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	items, err := h.svc.Languages(r.Context(), limit, offset)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	list(w, items, "")
}

// @Summary Listar niveles
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Level
// @Router /levels [get]
func (h *CatalogHandler) Levels(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Levels(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	list(w, items, "")
}

type nameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// @Summary Crear categoría (ADMIN)
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body nameRequest true "nombre"
// @Success 201 {object} models.Category
// @Router /admin/categories [post]
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), req.Name)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, c, "Categoría creada")
}

// @Summary Crear lenguaje (ADMIN)
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body nameRequest true "nombre"
// @Success 201 {object} models.Language
// @Router /admin/languages [post]
func (h *CatalogHandler) CreateLanguage(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.svc.CreateLanguage(r.Context(), req.Name)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, l, "Lenguaje creado")
}

// @Summary Obtener nivel
// @Tags catalog
// @Produce json
// @Param id path int true "levelId"
// @Success 200 {object} models.Level
// @Failure 404 {object} errorEnvelope
// @Router /levels/{id} [get]
func (h *CatalogHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	l, err := h.svc.GetLevel(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, l, "")
}

type levelRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// @Summary Crear nivel (ADMIN)
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body levelRequest true "nombre"
// @Success 201 {object} models.Level
// @Failure 400 {object} errorEnvelope
// @Router /admin/levels [post]
func (h *CatalogHandler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.svc.CreateLevel(r.Context(), req.Name)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, l, "Nivel creado")
}

// @Summary Renombrar nivel (ADMIN)
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "levelId"
// @Param body body levelRequest true "nombre"
// @Success 200 {object} models.Level
// @Failure 404 {object} errorEnvelope
// @Router /admin/levels/{id} [put]
func (h *CatalogHandler) UpdateLevel(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	var req levelRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.svc.UpdateLevel(r.Context(), id, req.Name)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, l, "Nivel actualizado")
}

// @Summary Eliminar nivel (ADMIN)
// @Description Falla si alguna preferencia usa el nivel
// @Tags catalog
// @Security BearerAuth
// @Produce json
// @Param id path int true "levelId"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorEnvelope
// @Failure 404 {object} errorEnvelope
// @Router /admin/levels/{id} [delete]
func (h *CatalogHandler) DeleteLevel(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteLevel(r.Context(), id); err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"deleted": true, "id": id}, "Nivel eliminado")
}
