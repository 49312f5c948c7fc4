package handler

import (
	"net/http"

	"biblioteca-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type registerRequest struct {
	Registration string `json:"registration" validate:"required,max=20"`
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
}

// @Summary Register
// @Description Crea un usuario activo con rol user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "datos"
// @Success 201 {object} models.UserDoc
// @Failure 400 {object} errorEnvelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.svc.Register(r.Context(), service.RegisterUserData{
		Registration: req.Registration,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, u, "Usuario registrado")
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credenciales"
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorEnvelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{
		"accessToken": token,
		"tokenType":   "bearer",
		"user":        u,
	}, "Login exitoso")
}

// @Summary Usuario autenticado
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UserDoc
// @Router /me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUserByID(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, u, "")
}

// @Summary Listar usuarios (ADMIN)
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param limit query int false "límite (default: 20)"
// @Param offset query int false "offset (default: 0)"
// @Success 200 {array} models.UserDoc
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := h.svc.ListUsers(r.Context(), limit, offset)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	list(w, users, "")
}

// @Summary Obtener usuario por id (ADMIN)
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Success 200 {object} models.UserDoc
// @Failure 404 {object} errorEnvelope
// @Router /users/{id} [get]
func (h *AuthHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	u, err := h.svc.GetUserByID(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, u, "")
}

type stateRequest struct {
	State string `json:"state" validate:"required,oneof=active inactive suspended"`
}

// @Summary Cambiar estado de un usuario (ADMIN)
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "userId"
// @Param body body stateRequest true "nuevo estado"
// @Success 200 {object} models.UserDoc
// @Router /users/{id}/state [put]
func (h *AuthHandler) SetState(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	var req stateRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.SetState(r.Context(), id, req.State)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, u, "Estado actualizado")
}

type updateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

// @Summary Actualizar mi cuenta
// @Description Solo el dueño de la cuenta puede modificarla
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "userId"
// @Param body body updateUserRequest true "campos a cambiar"
// @Success 200 {object} models.UserDoc
// @Failure 403 {object} errorEnvelope
// @Failure 404 {object} errorEnvelope
// @Router /users/{id} [put]
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	var req updateUserRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), UserIDFromContext(r.Context()), id, service.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, u, "Usuario actualizado exitosamente")
}

// @Summary Eliminar mi cuenta
// @Description Borra la cuenta, sus preferencias y sus lecturas
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Success 200 {object} map[string]any
// @Failure 403 {object} errorEnvelope
// @Router /users/{id} [delete]
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteUser(r.Context(), UserIDFromContext(r.Context()), id); err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"deleted": true, "id": id}, "Usuario eliminado exitosamente")
}
