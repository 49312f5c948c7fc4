package recommend

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// KMeansConfig controla el ajuste. Con la misma semilla y los mismos
// datos el resultado es siempre el mismo.
type KMeansConfig struct {
	K             int
	Restarts      int
	MaxIterations int
	Tolerance     float64
	Seed          uint64
}

func DefaultKMeansConfig(k int) KMeansConfig {
	return KMeansConfig{
		K:             k,
		Restarts:      10,
		MaxIterations: 300,
		Tolerance:     1e-4,
		Seed:          42,
	}
}

type kmeansFit struct {
	Centroids [][]float64
	Labels    []int
	Inertia   float64
}

// fitKMeans corre Restarts ajustes con inicialización k-means++ y se
// queda con el de menor inercia.
func fitKMeans(ctx context.Context, data [][]float64, cfg KMeansConfig) (kmeansFit, error) {
	if len(data) == 0 || cfg.K <= 0 {
		return kmeansFit{}, ErrInsufficientData
	}
	if cfg.K > len(data) {
		cfg.K = len(data)
	}
	if cfg.Restarts <= 0 {
		cfg.Restarts = 1
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	best := kmeansFit{Inertia: math.Inf(1)}
	for r := 0; r < cfg.Restarts; r++ {
		if err := ctx.Err(); err != nil {
			return kmeansFit{}, err
		}
		fit := kmeansOnce(data, cfg, rng)
		if fit.Inertia < best.Inertia {
			best = fit
		}
	}
	return best, nil
}

func kmeansOnce(data [][]float64, cfg KMeansConfig, rng *rand.Rand) kmeansFit {
	centroids := kmeansPlusPlus(data, cfg.K, rng)
	labels := make([]int, len(data))

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		assignLabels(data, centroids, labels)
		next := recomputeCentroids(data, labels, centroids)
		moved := maxMovement(centroids, next)
		centroids = next
		if moved < cfg.Tolerance {
			break
		}
	}

	// asignación final contra los centroides definitivos
	inertia := assignLabels(data, centroids, labels)
	return kmeansFit{Centroids: centroids, Labels: labels, Inertia: inertia}
}

// kmeansPlusPlus elige el primer centroide al azar y el resto con
// probabilidad proporcional a la distancia al cuadrado.
func kmeansPlusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(data)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(data[rng.IntN(n)]))

	d2 := make([]float64, n)
	for len(centroids) < k {
		total := 0.0
		for i, p := range data {
			_, d := nearest(p, centroids)
			d2[i] = d * d
			total += d2[i]
		}

		idx := rng.IntN(n)
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range d2 {
				acc += d
				if acc >= target && d > 0 {
					idx = i
					break
				}
			}
		}
		centroids = append(centroids, clone(data[idx]))
	}
	return centroids
}

// assignLabels devuelve la inercia (suma de distancias al cuadrado).
func assignLabels(data, centroids [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, p := range data {
		c, d := nearest(p, centroids)
		labels[i] = c
		inertia += d * d
	}
	return inertia
}

// recomputeCentroids promedia cada cluster; un cluster vacío conserva su
// centroide anterior.
func recomputeCentroids(data [][]float64, labels []int, old [][]float64) [][]float64 {
	dim := len(data[0])
	sums := make([][]float64, len(old))
	counts := make([]int, len(old))
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for i, p := range data {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}
	for i := range sums {
		if counts[i] == 0 {
			sums[i] = clone(old[i])
			continue
		}
		floats.Scale(1/float64(counts[i]), sums[i])
	}
	return sums
}

func maxMovement(a, b [][]float64) float64 {
	m := 0.0
	for i := range a {
		if d := floats.Distance(a[i], b[i], 2); d > m {
			m = d
		}
	}
	return m
}

// nearest devuelve el índice del centroide más cercano y la distancia
// euclídea. En empate gana el índice menor.
func nearest(p []float64, centroids [][]float64) (int, float64) {
	best, bestD := 0, math.Inf(1)
	for i, c := range centroids {
		if d := floats.Distance(p, c, 2); d < bestD {
			best, bestD = i, d
		}
	}
	return best, bestD
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
