package models

import "time"

// BookSummary es el formato de salida de cada libro recomendado.
type BookSummary struct {
	BookID     int        `json:"bookId"`
	Title      string     `json:"title"`
	Synopsis   string     `json:"synopsis"`
	CoverURL   string     `json:"coverUrl"`
	FileURL    string     `json:"fileUrl"`
	TotalPages int        `json:"totalPages"`
	Authors    []Author   `json:"authors"`
	Categories []Category `json:"categories"`
	Languages  []Language `json:"languages"`
}

// Recommendation es el historial que se guarda en Mongo por cada respuesta.
type Recommendation struct {
	ID        string         `bson:"_id,omitempty"  json:"id"`
	UserID    int            `bson:"userId"         json:"userId"`
	Algo      string         `bson:"algo"           json:"algo"`
	Tier      string         `bson:"tier"           json:"tier"`
	Cluster   *int           `bson:"cluster"        json:"cluster,omitempty"`
	Model     string         `bson:"modelVersion"   json:"modelVersion,omitempty"`
	Params    map[string]any `bson:"params"         json:"params"`
	BookIDs   []int          `bson:"bookIds"        json:"bookIds"`
	CreatedAt time.Time      `bson:"createdAt"      json:"createdAt"`
}

// PreferenceLabels son las preferencias en texto, para diagnóstico.
type PreferenceLabels struct {
	Categories []string `json:"categories"`
	Languages  []string `json:"languages"`
	Level      *string  `json:"level"`
}
