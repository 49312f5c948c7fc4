package handler

import (
	"net/http"

	"biblioteca-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type ReadingHandler struct {
	svc *service.ReadingService
}

func NewReadingHandler(s *service.ReadingService) *ReadingHandler {
	return &ReadingHandler{svc: s}
}

type createReadingRequest struct {
	BookID    int     `json:"bookId" validate:"required,gt=0"`
	PagesRead *int    `json:"pagesRead" validate:"omitempty,gte=0"`
	State     *string `json:"state" validate:"omitempty,oneof=not_started in_progress completed abandoned"`
}

type updateReadingRequest struct {
	PagesRead *int    `json:"pagesRead" validate:"omitempty,gte=0"`
	State     *string `json:"state" validate:"omitempty,oneof=not_started in_progress completed abandoned"`
}

// @Summary Registrar lectura
// @Tags readings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body createReadingRequest true "libro y progreso"
// @Success 201 {object} models.ReadingDoc
// @Failure 400 {object} errorEnvelope
// @Failure 404 {object} errorEnvelope
// @Router /me/readings [post]
func (h *ReadingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReadingRequest
	if !decode(w, r, &req) {
		return
	}
	rd, err := h.svc.Create(r.Context(), UserIDFromContext(r.Context()), req.BookID, service.ReadingInput{
		PagesRead: req.PagesRead,
		State:     req.State,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, rd, "Lectura registrada")
}

// @Summary Mis lecturas
// @Tags readings
// @Security BearerAuth
// @Produce json
// @Param state query string false "not_started|in_progress|completed|abandoned"
// @Param limit query int false "límite (default: 50)"
// @Param offset query int false "offset"
// @Success 200 {array} models.ReadingDoc
// @Router /me/readings [get]
func (h *ReadingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items, err := h.svc.List(r.Context(), UserIDFromContext(r.Context()), r.URL.Query().Get("state"), limit, offset)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	list(w, items, "")
}

// @Summary Detalle de una lectura
// @Description Incluye título, total de páginas y porcentaje de avance
// @Tags readings
// @Security BearerAuth
// @Produce json
// @Param bookId path int true "bookId"
// @Success 200 {object} models.ReadingDetail
// @Failure 404 {object} errorEnvelope
// @Router /me/readings/{bookId} [get]
func (h *ReadingHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID, valid := pathInt(w, chi.URLParam(r, "bookId"), "bookId")
	if !valid {
		return
	}
	d, err := h.svc.Get(r.Context(), UserIDFromContext(r.Context()), bookID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, d, "")
}

// @Summary Estadísticas de lectura
// @Description Total de páginas leídas, cantidad de lecturas y promedio
// @Tags readings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ReadingStats
// @Router /me/readings/stats [get]
func (h *ReadingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, st, "")
}

// @Summary Actualizar lectura
// @Tags readings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param bookId path int true "bookId"
// @Param body body updateReadingRequest true "progreso"
// @Success 200 {object} models.ReadingDoc
// @Router /me/readings/{bookId} [put]
func (h *ReadingHandler) Update(w http.ResponseWriter, r *http.Request) {
	bookID, valid := pathInt(w, chi.URLParam(r, "bookId"), "bookId")
	if !valid {
		return
	}
	var req updateReadingRequest
	if !decode(w, r, &req) {
		return
	}
	rd, err := h.svc.Update(r.Context(), UserIDFromContext(r.Context()), bookID, service.ReadingInput{
		PagesRead: req.PagesRead,
		State:     req.State,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, rd, "Lectura actualizada")
}

// @Summary Borrar lectura
// @Tags readings
// @Security BearerAuth
// @Produce json
// @Param bookId path int true "bookId"
// @Success 200 {object} map[string]bool
// @Router /me/readings/{bookId} [delete]
func (h *ReadingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bookID, valid := pathInt(w, chi.URLParam(r, "bookId"), "bookId")
	if !valid {
		return
	}
	if err := h.svc.Delete(r.Context(), UserIDFromContext(r.Context()), bookID); err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]bool{"deleted": true}, "Lectura eliminada")
}
