package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/metrics"
	"biblioteca-api/internal/recommend"
	"biblioteca-api/internal/trainnode"
)

// ErrNodesUnavailable: ningún nodo entrenador respondió.
var ErrNodesUnavailable = errors.New("ningún nodo entrenador disponible")

// ModelService administra el modelo K-Means: entrenamiento (local o en un
// nodo entrenador por TCP) y estado.
type ModelService struct {
	engine  *recommend.Engine
	nodes   []string
	timeout time.Duration
}

func NewModelService(engine *recommend.Engine, nodes []string) *ModelService {
	return &ModelService{engine: engine, nodes: nodes, timeout: 5 * time.Minute}
}

// Train entrena con k clusters. Con nodos configurados el trabajo se
// despacha al primero que responda y después se recarga el artefacto
// compartido.
func (s *ModelService) Train(ctx context.Context, k, requestedBy int) (*recommend.TrainResult, error) {
	start := time.Now()
	var (
		res *recommend.TrainResult
		err error
	)
	if len(s.nodes) == 0 {
		res, err = s.engine.Train(ctx, k)
		metrics.ObserveTraining("api", time.Since(start), trained(res), clusters(res), err)
	} else {
		res, err = s.dispatch(ctx, k, requestedBy)
	}
	if err != nil {
		return nil, err
	}

	invalidateAllRecommendations(ctx)
	return res, nil
}

func trained(r *recommend.TrainResult) int {
	if r == nil {
		return 0
	}
	return r.TrainedUsers
}

func clusters(r *recommend.TrainResult) int {
	if r == nil {
		return 0
	}
	return r.K
}

func (s *ModelService) dispatch(ctx context.Context, k, requestedBy int) (*recommend.TrainResult, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	task := &trainnode.TrainTask{K: k, RequestedBy: requestedBy, RequestID: logging.RequestIDFromContext(ctx)}
	var lastErr error
	for _, addr := range s.nodes {
		resp, err := trainnode.SendTask(ctxTimeout, addr, task)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("node", addr).Msg("[model] nodo no respondió, probando el siguiente")
			lastErr = err
			continue
		}
		if resp.Error != "" {
			if resp.Code == trainnode.CodeInsufficientData {
				return nil, fmt.Errorf("%w: %s", recommend.ErrInsufficientData, resp.Error)
			}
			return nil, fmt.Errorf("nodo %s: %s", resp.NodeID, resp.Error)
		}

		if _, err := s.engine.Reload(ctx); err != nil {
			return nil, fmt.Errorf("recargando modelo del nodo %s: %w", resp.NodeID, err)
		}
		logging.Ctx(ctx).Info().Str("node", resp.NodeID).Str("version", resp.Version).Int64("elapsedMs", resp.ElapsedMS).Msg("[model] entrenado en nodo")
		return &recommend.TrainResult{
			Version:      resp.Version,
			TrainedUsers: resp.TrainedUsers,
			K:            resp.K,
			Distribution: resp.Distribution,
		}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrNodesUnavailable, lastErr)
}

func (s *ModelService) Info(ctx context.Context) (*recommend.ModelInfo, error) {
	return s.engine.ModelInfo(ctx)
}
