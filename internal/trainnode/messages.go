package trainnode

// Tarea enviada desde la API a un nodo entrenador.
type TrainTask struct {
	K           int    `json:"k"` // <= 0: k por defecto del nodo
	RequestedBy int    `json:"requestedBy"`
	RequestID   string `json:"requestId,omitempty"`
}

// Respuesta del nodo. Error != "" si el entrenamiento falló.
type TrainResponse struct {
	NodeID       string      `json:"nodeId"`
	Version      string      `json:"version,omitempty"`
	TrainedUsers int         `json:"trainedUsers"`
	K            int         `json:"k"`
	Distribution map[int]int `json:"distribution,omitempty"`
	ElapsedMS    int64       `json:"elapsedMs"`
	Error        string      `json:"error,omitempty"`
	// Code distingue fallas esperables (ej. "insufficient_data").
	Code string `json:"code,omitempty"`
}
