package recommend

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// scaler estandariza por dimensión con media y desviación poblacional.
// Desviación 0 se reemplaza por 1 para no dividir por cero.
type scaler struct {
	Mean  []float64
	Scale []float64
}

func fitScaler(x [][]float64) scaler {
	if len(x) == 0 {
		return scaler{}
	}
	dim := len(x[0])
	s := scaler{Mean: make([]float64, dim), Scale: make([]float64, dim)}
	col := make([]float64, len(x))
	for j := 0; j < dim; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s
}

func (s scaler) transform(v []float64) []float64 {
	out := make([]float64, len(v))
	for j := range v {
		out[j] = (v[j] - s.Mean[j]) / s.Scale[j]
	}
	return out
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
