package handler

import (
	"net/http"

	"biblioteca-api/internal/service"
)

type ModelHandler struct {
	svc *service.ModelService
}

func NewModelHandler(s *service.ModelService) *ModelHandler {
	return &ModelHandler{svc: s}
}

// @Summary Entrenar modelo K-Means (ADMIN)
// @Description Con TRAINER_ADDRS el trabajo va a un nodo entrenador; si no, se entrena en el API
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param k query int false "número de clusters (default del servidor)"
// @Success 200 {object} recommend.TrainResult
// @Failure 409 {object} errorEnvelope
// @Failure 503 {object} errorEnvelope
// @Router /admin/recommendations/train [post]
func (h *ModelHandler) Train(w http.ResponseWriter, r *http.Request) {
	k := queryInt(r, "k", 0)
	if k < 0 {
		fail(w, http.StatusBadRequest, CodeInvalidInput, "k debe ser positivo", map[string]int{"k": k})
		return
	}
	res, err := h.svc.Train(r.Context(), k, UserIDFromContext(r.Context()))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, res, "Modelo entrenado")
}

// @Summary Estado del modelo (ADMIN)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} recommend.ModelInfo
// @Router /admin/recommendations/model [get]
func (h *ModelHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Info(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	ok(w, http.StatusOK, info, "")
}
