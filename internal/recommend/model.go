package recommend

import (
	"slices"
	"sort"
	"time"
)

// Partition son los parámetros del modelo: vocabulario con el que se
// entrenó, estandarización y centroides.
type Partition struct {
	Version      string      `json:"version"`
	TrainedAt    time.Time   `json:"trainedAt"`
	K            int         `json:"k"`
	Dim          int         `json:"dim"`
	CategoryIDs  []int       `json:"categoryIds"`
	LanguageIDs  []int       `json:"languageIds"`
	Mean         []float64   `json:"mean"`
	Scale        []float64   `json:"scale"`
	Centroids    [][]float64 `json:"centroids"`
	Inertia      float64     `json:"inertia"`
	TrainedUsers int         `json:"trainedUsers"`
}

type Assignment struct {
	UserID  int `json:"userId"`
	Cluster int `json:"cluster"`
}

// Artifact es lo que se persiste: partición + mapa usuario → cluster.
type Artifact struct {
	Partition   Partition    `json:"partition"`
	Assignments []Assignment `json:"assignments"`
}

// validate chequea la coherencia interna del artefacto.
func (a *Artifact) validate() bool {
	p := a.Partition
	if p.Version == "" || p.K < 1 || p.Dim < 1 || len(p.Centroids) != p.K {
		return false
	}
	if len(p.Mean) != p.Dim || len(p.Scale) != p.Dim {
		return false
	}
	if p.Dim != len(p.CategoryIDs)+len(p.LanguageIDs)+1 {
		return false
	}
	for _, c := range p.Centroids {
		if len(c) != p.Dim || !finite(c) {
			return false
		}
	}
	for _, s := range p.Scale {
		if s == 0 {
			return false
		}
	}
	for _, as := range a.Assignments {
		if as.Cluster < 0 || as.Cluster >= p.K {
			return false
		}
	}
	return true
}

type ModelStatus int

const (
	StatusMissing ModelStatus = iota
	StatusReady
	StatusStale
)

func (s ModelStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusStale:
		return "stale"
	default:
		return "missing"
	}
}

// Snapshot es inmutable: un entrenamiento nuevo crea otro y lo reemplaza.
type Snapshot struct {
	part    Partition
	sc      scaler
	byUser  map[int]int
	members map[int][]int
}

func newSnapshot(a *Artifact) *Snapshot {
	s := &Snapshot{
		part:    a.Partition,
		sc:      scaler{Mean: a.Partition.Mean, Scale: a.Partition.Scale},
		byUser:  make(map[int]int, len(a.Assignments)),
		members: make(map[int][]int, a.Partition.K),
	}
	for _, as := range a.Assignments {
		s.byUser[as.UserID] = as.Cluster
		s.members[as.Cluster] = append(s.members[as.Cluster], as.UserID)
	}
	for c := range s.members {
		sort.Ints(s.members[c])
	}
	return s
}

// Status compara el snapshot con el vocabulario actual. Un nil es Missing.
func (s *Snapshot) Status(v Vocabulary) ModelStatus {
	if s == nil {
		return StatusMissing
	}
	if s.part.Dim != v.Dim() ||
		!slices.Equal(s.part.CategoryIDs, v.CategoryIDs()) ||
		!slices.Equal(s.part.LanguageIDs, v.LanguageIDs()) {
		return StatusStale
	}
	return StatusReady
}

func (s *Snapshot) Partition() Partition {
	return s.part
}

func (s *Snapshot) Version() string {
	if s == nil {
		return ""
	}
	return s.part.Version
}

// Predict estandariza con los parámetros guardados y devuelve el
// centroide más cercano.
func (s *Snapshot) Predict(features []float64) int {
	c, _ := nearest(s.sc.transform(features), s.part.Centroids)
	return c
}

func (s *Snapshot) ClusterOf(userID int) (int, bool) {
	c, ok := s.byUser[userID]
	return c, ok
}

// Peers: miembros del cluster según el entrenamiento, sin excludeUserID.
func (s *Snapshot) Peers(cluster, excludeUserID int) []int {
	out := make([]int, 0, len(s.members[cluster]))
	for _, id := range s.members[cluster] {
		if id != excludeUserID {
			out = append(out, id)
		}
	}
	return out
}

// Distribution cuenta miembros para cada cluster 0..k-1 (incluye vacíos).
func (s *Snapshot) Distribution() map[int]int {
	d := make(map[int]int, s.part.K)
	for c := 0; c < s.part.K; c++ {
		d[c] = len(s.members[c])
	}
	return d
}
