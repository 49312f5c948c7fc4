package handler

import (
	"net/http"

	"biblioteca-api/internal/googlebooks"
	"biblioteca-api/internal/models"
	"biblioteca-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type BookHandler struct {
	svc *service.BookService
}

func NewBookHandler(s *service.BookService) *BookHandler { return &BookHandler{svc: s} }

// @Summary Get book
// @Tags books
// @Produce json
// @Param id path int true "bookId"
// @Success 200 {object} models.BookDoc
// @Failure 404 {object} errorEnvelope
// @Router /books/{id} [get]
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	b, err := h.svc.GetBook(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, b, "")
}

// @Summary Buscar / listar libros (paginado)
// @Tags books
// @Produce json
// @Param q query string false "búsqueda por título"
// @Param categoryId query int false "filtrar por categoría"
// @Param languageId query int false "filtrar por lenguaje"
// @Param limit query int false "límite"
// @Param offset query int false "offset"
// @Success 200 {array} models.BookDoc
// @Router /books [get]
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	categoryID := queryInt(r, "categoryId", 0)
	languageID := queryInt(r, "languageId", 0)

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	books, err := h.svc.Search(r.Context(), q, categoryID, languageID, limit, offset)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	list(w, books, "")
}

// @Summary Crear libro (ADMIN)
// @Description Autores y editorial se crean si no existen
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.BookCreateRequest true "datos del libro"
// @Success 201 {object} models.BookDoc
// @Failure 422 {object} errorEnvelope
// @Router /admin/books [post]
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.BookCreateRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, b, "Libro creado")
}

// @Summary Buscar en Google Books
// @Description Devuelve datos para prellenar el alta de un libro
// @Tags books
// @Produce json
// @Param q query string false "texto libre"
// @Param subject query string false "categoría (tiene prioridad sobre q)"
// @Param lang query string false "código de idioma (es, en)"
// @Param max query int false "máximo de resultados (hasta 40)"
// @Success 200 {array} models.BookPrefill
// @Failure 503 {object} errorEnvelope
// @Router /books/google/search [get]
func (h *BookHandler) SearchGoogle(w http.ResponseWriter, r *http.Request) {
	q := googlebooks.Query{
		Q:        r.URL.Query().Get("q"),
		Subject:  r.URL.Query().Get("subject"),
		Language: r.URL.Query().Get("lang"),
		Max:      queryInt(r, "max", 20),
		Start:    queryInt(r, "start", 0),
	}
	if q.Q == "" && q.Subject == "" {
		fail(w, http.StatusBadRequest, CodeInvalidInput, "se requiere q o subject", nil)
		return
	}
	items, err := h.svc.SearchGoogle(r.Context(), q)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	list(w, items, "")
}

// @Summary Actualizar libro (ADMIN)
// @Description Campos ausentes no se tocan; autores y tags presentes reemplazan a los anteriores
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "bookId"
// @Param body body models.BookUpdateRequest true "campos a cambiar"
// @Success 200 {object} models.BookDoc
// @Failure 404 {object} errorEnvelope
// @Router /admin/books/{id} [put]
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	var req models.BookUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.svc.Update(r.Context(), id, &req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, b, "Libro actualizado exitosamente")
}

// @Summary Eliminar libro (ADMIN)
// @Description También borra las lecturas del libro
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param id path int true "bookId"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorEnvelope
// @Router /admin/books/{id} [delete]
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"deleted": true, "id": id}, "Libro eliminado exitosamente")
}
