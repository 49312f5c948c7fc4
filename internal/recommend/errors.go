package recommend

import "errors"

var (
	// ErrInsufficientData: menos de dos usuarios activos para entrenar.
	ErrInsufficientData = errors.New("recommend: datos insuficientes para entrenar")
	// ErrDegenerateInput: features no finitas (NaN/Inf) tras estandarizar.
	ErrDegenerateInput = errors.New("recommend: entrada degenerada")
	ErrModelNotFound   = errors.New("recommend: no hay modelo entrenado")
	ErrModelCorrupt    = errors.New("recommend: artefacto del modelo corrupto")
	ErrUserNotFound    = errors.New("recommend: usuario no encontrado")
)
