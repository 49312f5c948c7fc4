package trainnode

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/metrics"
	"biblioteca-api/internal/recommend"

	"github.com/goccy/go-json"
)

const CodeInsufficientData = "insufficient_data"

// Espera entre errores de Accept: arranca en minAcceptDelay y se duplica
// hasta maxAcceptDelay. Un Accept exitoso la reinicia.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Trainer es lo que el nodo ejecuta por cada tarea.
type Trainer interface {
	Train(ctx context.Context, k int) (*recommend.TrainResult, error)
}

// Serve acepta conexiones hasta que ctx se cancela. Cada conexión lleva
// una tarea y recibe una respuesta.
func Serve(ctx context.Context, ln net.Listener, nodeID string, trainer Trainer) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			logging.Warn().Err(err).Str("node", nodeID).Dur("retry", delay).Msg("[trainer] accept error")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		delay = 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			handleConn(ctx, nodeID, conn, trainer)
		}()
	}
}

func handleConn(ctx context.Context, nodeID string, conn net.Conn, trainer Trainer) {
	defer conn.Close()
	log := logging.With("trainer").With().Str("node", nodeID).Logger()

	dec := json.NewDecoder(bufio.NewReader(conn))
	var task TrainTask
	if err := dec.Decode(&task); err != nil {
		log.Warn().Err(err).Msg("[trainer] decode task error")
		return
	}

	log.Info().Int("k", task.K).Int("requestedBy", task.RequestedBy).Str("request_id", task.RequestID).Msg("[trainer] tarea recibida")

	start := time.Now()
	res, err := trainer.Train(ctx, task.K)
	elapsed := time.Since(start)

	resp := TrainResponse{NodeID: nodeID, ElapsedMS: elapsed.Milliseconds()}
	if err != nil {
		resp.Error = err.Error()
		if errors.Is(err, recommend.ErrInsufficientData) {
			resp.Code = CodeInsufficientData
		}
		metrics.ObserveTraining("node", elapsed, 0, 0, err)
		log.Warn().Err(err).Msg("[trainer] entrenamiento falló")
	} else {
		resp.Version = res.Version
		resp.TrainedUsers = res.TrainedUsers
		resp.K = res.K
		resp.Distribution = res.Distribution
		metrics.ObserveTraining("node", elapsed, res.TrainedUsers, res.K, nil)
		log.Info().Str("version", res.Version).Int("users", res.TrainedUsers).Int("k", res.K).Dur("elapsed", elapsed).Msg("[trainer] completado")
	}

	if err := json.NewEncoder(conn).Encode(&resp); err != nil {
		log.Warn().Err(err).Msg("[trainer] encode resp error")
	}
}
