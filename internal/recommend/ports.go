package recommend

import (
	"context"

	"biblioteca-api/internal/models"
)

// VocabularyReader lee los vocabularios globales, ordenados por id ascendente.
type VocabularyReader interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListLanguages(ctx context.Context) ([]models.Language, error)
	ListLevels(ctx context.Context) ([]models.Level, error)
}

// UserReader devuelve (nil, nil) cuando el usuario no existe.
type UserReader interface {
	FindByID(ctx context.Context, userID int) (*models.UserDoc, error)
	ListActive(ctx context.Context) ([]models.UserDoc, error)
}

// BookQuery: ambas consultas ordenan por bookId descendente y respetan
// excludeIDs y limit.
type BookQuery interface {
	FindByAnyTag(ctx context.Context, categoryIDs, languageIDs, excludeIDs []int, limit int) ([]models.BookDoc, error)
	FindRecent(ctx context.Context, excludeIDs []int, limit int) ([]models.BookDoc, error)
}

// ModelStore persiste el artefacto actual. Load devuelve ErrModelNotFound
// si nunca se entrenó y ErrModelCorrupt si el artefacto no se puede leer.
type ModelStore interface {
	Load(ctx context.Context) (*Artifact, error)
	Save(ctx context.Context, a *Artifact) error
}
