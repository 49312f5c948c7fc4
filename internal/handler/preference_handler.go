package handler

import (
	"net/http"

	"biblioteca-api/internal/service"
)

type PreferenceHandler struct {
	svc *service.PreferenceService
}

func NewPreferenceHandler(s *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: s}
}

// Listas ausentes no se tocan en PUT; presentes reemplazan.
type preferenceRequest struct {
	LevelID     *int   `json:"levelId" validate:"omitempty,gt=0"`
	CategoryIDs *[]int `json:"categoryIds" validate:"omitempty,dive,gt=0"`
	LanguageIDs *[]int `json:"languageIds" validate:"omitempty,dive,gt=0"`
}

func (p preferenceRequest) input() service.PreferenceInput {
	return service.PreferenceInput{LevelID: p.LevelID, CategoryIDs: p.CategoryIDs, LanguageIDs: p.LanguageIDs}
}

// @Summary Mis preferencias
// @Tags preferences
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.PreferenceDoc
// @Failure 404 {object} errorEnvelope
// @Router /me/preferences [get]
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, p, "")
}

// @Summary Crear preferencias
// @Tags preferences
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body preferenceRequest true "nivel, categorías y lenguajes"
// @Success 201 {object} models.PreferenceDoc
// @Failure 400 {object} errorEnvelope
// @Router /me/preferences [post]
func (h *PreferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Create(r.Context(), UserIDFromContext(r.Context()), req.input())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, p, "Preferencias creadas")
}

// @Summary Actualizar preferencias
// @Tags preferences
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body preferenceRequest true "campos a cambiar"
// @Success 200 {object} models.PreferenceDoc
// @Router /me/preferences [put]
func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Update(r.Context(), UserIDFromContext(r.Context()), req.input())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, p, "Preferencias actualizadas")
}

// @Summary Borrar preferencias
// @Tags preferences
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /me/preferences [delete]
func (h *PreferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), UserIDFromContext(r.Context())); err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]bool{"deleted": true}, "Preferencias eliminadas")
}
