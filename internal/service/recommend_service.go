package service

import (
	"context"
	"fmt"
	"time"

	"biblioteca-api/internal/cache"
	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/metrics"
	"biblioteca-api/internal/models"
	"biblioteca-api/internal/recommend"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50 // por seguridad, no deja pedir 1000 libros
)

type RecommendService struct {
	engine  *recommend.Engine
	recRepo HistoryStore
	ttl     time.Duration
}

func NewRecommendService(engine *recommend.Engine, recRepo HistoryStore, ttl time.Duration) *RecommendService {
	return &RecommendService{
		engine:  engine,
		recRepo: recRepo,
		ttl:     ttl,
	}
}

// ====== Petición de recomendaciones ======

type RecRequest struct {
	UserID  int
	Limit   int
	Refresh bool
}

func userCachePattern(userID int) string {
	return fmt.Sprintf("rec:user:%d:*", userID)
}

// El modelo forma parte de la key: un reentrenamiento deja las viejas sin uso.
func cacheKey(req RecRequest, model string) string {
	return fmt.Sprintf("rec:user:%d:limit:%d:model:%s", req.UserID, req.Limit, model)
}

// ClampLimit aplica el default y el máximo.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (s *RecommendService) Recommend(ctx context.Context, req RecRequest) (*recommend.Result, error) {
	req.Limit = ClampLimit(req.Limit)

	// 1) Cache Redis (solo con modelo cargado y refresh = false)
	if model := s.engine.Snapshot().Version(); model != "" && !req.Refresh {
		var cached recommend.Result
		if ok, err := cache.GetJSON(ctx, cacheKey(req, model), &cached); err == nil && ok {
			metrics.RecommendCacheHits.Inc()
			return &cached, nil
		}
		metrics.RecommendCacheMisses.Inc()
	}

	// 2) Motor K-Means
	res, err := s.engine.Recommend(ctx, req.UserID, req.Limit)
	if err != nil {
		return nil, err
	}
	metrics.RecommendRequests.WithLabelValues(res.Tier).Inc()

	// 3) Historial en Mongo (no rompemos la respuesta si falla)
	if s.recRepo != nil && res.Tier != recommend.TierNone {
		hist := &models.Recommendation{
			UserID:  req.UserID,
			Algo:    "kmeans",
			Tier:    res.Tier,
			Cluster: res.Cluster,
			Model:   res.Model,
			Params: map[string]any{
				"limit":   req.Limit,
				"refresh": req.Refresh,
				"peers":   res.Peers,
			},
			BookIDs:   make([]int, len(res.Items)),
			CreatedAt: time.Now(),
		}
		for i, it := range res.Items {
			hist.BookIDs[i] = it.BookID
		}
		if err := s.recRepo.Insert(ctx, hist); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("error guardando recomendación en Mongo")
		}
	}

	// 4) Cachear en Redis
	if res.Model != "" {
		if err := cache.SetJSON(ctx, cacheKey(req, res.Model), res, s.ttl); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("error cacheando recomendación en Redis")
		}
	}

	return res, nil
}

// History devuelve las últimas recomendaciones guardadas del usuario.
func (s *RecommendService) History(ctx context.Context, userID, limit int) ([]models.Recommendation, error) {
	if s.recRepo == nil {
		return nil, nil
	}
	return s.recRepo.FindByUser(ctx, userID, int64(ClampLimit(limit)))
}

// UserCluster: diagnóstico del cluster asignado.
func (s *RecommendService) UserCluster(ctx context.Context, userID int) (*recommend.UserCluster, error) {
	return s.engine.GetUserCluster(ctx, userID)
}
