package handler

import (
	"net/http"
	"time"

	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type RecommendHandler struct {
	svc *service.RecommendService
}

func NewRecommendHandler(s *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: s}
}

func recRequest(r *http.Request, userID int) service.RecRequest {
	return service.RecRequest{
		UserID:  userID,
		Limit:   service.ClampLimit(queryInt(r, "limit", service.DefaultLimit)),
		Refresh: r.URL.Query().Get("refresh") == "true",
	}
}

func (h *RecommendHandler) respond(w http.ResponseWriter, r *http.Request, userID int) {
	res, err := h.svc.Recommend(r.Context(), recRequest(r, userID))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	n := len(res.Items)
	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Data:      res,
		Message:   "Recomendaciones generadas",
		Count:     &n,
		Timestamp: time.Now().UTC(),
	})
}

// @Summary Mis recomendaciones
// @Description K-Means sobre preferencias; completa con libros recientes
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param limit query int false "cantidad de libros (default 10, máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} recommend.Result
// @Router /me/recommendations [get]
func (h *RecommendHandler) GetMyRecommendations(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, UserIDFromContext(r.Context()))
}

// @Summary Recomendaciones para un usuario (ADMIN)
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Param limit query int false "cantidad de libros (default 10, máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} recommend.Result
// @Router /users/{id}/recommendations [get]
func (h *RecommendHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	id, valid := pathInt(w, chi.URLParam(r, "id"), "id")
	if !valid {
		return
	}
	h.respond(w, r, id)
}

// @Summary Mi cluster
// @Description Diagnóstico: cluster asignado y preferencias legibles
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Success 200 {object} recommend.UserCluster
// @Router /me/recommendations/cluster [get]
func (h *RecommendHandler) GetMyCluster(w http.ResponseWriter, r *http.Request) {
	uc, err := h.svc.UserCluster(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, uc, "")
}

// @Summary Historial de recomendaciones
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param limit query int false "cantidad de entradas (default 10, máx 50)"
// @Success 200 {array} models.Recommendation
// @Router /me/recommendations/history [get]
func (h *RecommendHandler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.History(r.Context(), UserIDFromContext(r.Context()), queryInt(r, "limit", service.DefaultLimit))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	list(w, items, "")
}

// upgrader global (no afecta a swagger)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Recomendaciones en tiempo real (WebSocket)
// @Description Mensajes: start, cluster, recommendations (o error)
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param limit query int false "cantidad de libros (default 10, máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} map[string]interface{}
// @Router /me/ws/recommendations [get]
func (h *RecommendHandler) GetRecommendationsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió al cliente
		logging.Ctx(r.Context()).Warn().Err(err).Msg("[ws] no se pudo abrir WebSocket")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	userID := UserIDFromContext(ctx)
	req := recRequest(r, userID)

	// Mensaje inicial
	_ = conn.WriteJSON(map[string]any{
		"type": "start",
		"msg":  "Conexión WS abierta, iniciando cálculo…",
	})

	// Cluster asignado (si el modelo no lo puede asignar seguimos con el fallback)
	if uc, err := h.svc.UserCluster(ctx, userID); err == nil {
		_ = conn.WriteJSON(map[string]any{
			"type":        "cluster",
			"cluster":     uc.Cluster,
			"preferences": uc.Preferences,
		})
	} else {
		logging.Ctx(ctx).Debug().Err(err).Int("user", userID).Msg("[ws] sin cluster para el usuario")
	}

	res, err := h.svc.Recommend(ctx, req)
	if err != nil {
		_ = conn.WriteJSON(map[string]any{
			"type":  "error",
			"error": err.Error(),
		})
		return
	}

	// Mensaje final con recomendaciones
	_ = conn.WriteJSON(map[string]any{
		"type":         "recommendations",
		"userId":       userID,
		"items":        res.Items,
		"tier":         res.Tier,
		"modelVersion": res.Model,
		"generatedAt":  time.Now().UTC(),
	})
}
