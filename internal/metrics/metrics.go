package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "biblioteca_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP en segundos",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Recomendaciones
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biblioteca_recommend_requests_total",
			Help: "Peticiones de recomendación por tier que produjo el resultado",
		},
		[]string{"tier"},
	)

	RecommendCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "biblioteca_recommend_cache_hits_total",
		Help: "Recomendaciones servidas desde Redis",
	})

	RecommendCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "biblioteca_recommend_cache_misses_total",
		Help: "Recomendaciones calculadas por no estar en Redis",
	})

	// Entrenamiento K-Means
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biblioteca_training_runs_total",
			Help: "Entrenamientos del modelo por resultado y origen",
		},
		[]string{"result", "source"},
	)

	TrainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "biblioteca_training_duration_seconds",
		Help:    "Duración de los entrenamientos del modelo",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})

	TrainedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "biblioteca_model_trained_users",
		Help: "Usuarios activos usados en el último entrenamiento",
	})

	ModelClusters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "biblioteca_model_clusters",
		Help: "k efectivo del último entrenamiento",
	})

	// Circuit breaker de APIs externas
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "biblioteca_circuit_breaker_state",
			Help: "Estado del circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biblioteca_circuit_breaker_requests_total",
			Help: "Peticiones a través del circuit breaker por resultado",
		},
		[]string{"name", "result"},
	)
)

// ObserveHTTP registra una petición terminada.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveTraining registra un entrenamiento. source: "api" | "node".
func ObserveTraining(source string, elapsed time.Duration, users, k int, err error) {
	if err != nil {
		TrainingRuns.WithLabelValues("error", source).Inc()
		return
	}
	TrainingRuns.WithLabelValues("ok", source).Inc()
	TrainingDuration.Observe(elapsed.Seconds())
	TrainedUsers.Set(float64(users))
	ModelClusters.Set(float64(k))
}
