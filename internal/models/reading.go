package models

const (
	ReadingNotStarted = "not_started"
	ReadingInProgress = "in_progress"
	ReadingCompleted  = "completed"
	ReadingAbandoned  = "abandoned"
)

func ValidReadingState(s string) bool {
	switch s {
	case ReadingNotStarted, ReadingInProgress, ReadingCompleted, ReadingAbandoned:
		return true
	}
	return false
}

// ReadingDoc: progreso de lectura, uno por usuario+libro.
type ReadingDoc struct {
	UserID    int    `json:"userId" bson:"userId"`
	BookID    int    `json:"bookId" bson:"bookId"`
	PagesRead int    `json:"pagesRead" bson:"pagesRead"`
	State     string `json:"state" bson:"state"`
	CreatedAt string `json:"createdAt" bson:"createdAt"`
	UpdatedAt string `json:"updatedAt" bson:"updatedAt"`
}

// ReadingDetail agrega datos del libro y el porcentaje de avance.
type ReadingDetail struct {
	ReadingDoc
	BookTitle       string  `json:"bookTitle"`
	BookTotalPages  int     `json:"bookTotalPages"`
	ProgressPercent float64 `json:"progressPercent"`
}

type ReadingStats struct {
	UserID         int     `json:"userId"`
	TotalPagesRead int     `json:"totalPagesRead"`
	TotalReadings  int     `json:"totalReadings"`
	AveragePages   float64 `json:"averagePages"`
}
