package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"biblioteca-api/internal/cache"
	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type CatalogService struct {
	catalog CatalogStore
	users   UserStore
}

func NewCatalogService(c CatalogStore, u UserStore) *CatalogService {
	return &CatalogService{catalog: c, users: u}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (s *CatalogService) Categories(ctx context.Context, limit, offset int) ([]models.Category, error) {
	all, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return page(all, limit, offset), nil
}

func (s *CatalogService) Languages(ctx context.Context, limit, offset int) ([]models.Language, error) {
	all, err := s.catalog.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}
	return page(all, limit, offset), nil
}

func (s *CatalogService) Levels(ctx context.Context) ([]models.Level, error) {
	return s.catalog.ListLevels(ctx)
}

// CreateCategory agrega una categoría. El modelo entrenado queda
// desactualizado y se reentrena en el próximo uso.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	all, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if strings.EqualFold(c.Name, name) {
			return nil, ErrDuplicateName
		}
	}
	c, err := s.catalog.InsertCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	invalidateAllRecommendations(ctx)
	return c, nil
}

func (s *CatalogService) CreateLanguage(ctx context.Context, name string) (*models.Language, error) {
	name = strings.TrimSpace(name)
	all, err := s.catalog.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range all {
		if strings.EqualFold(l.Name, name) {
			return nil, ErrDuplicateName
		}
	}
	l, err := s.catalog.InsertLanguage(ctx, name)
	if err != nil {
		return nil, err
	}
	invalidateAllRecommendations(ctx)
	return l, nil
}

func (s *CatalogService) GetLevel(ctx context.Context, id int) (*models.Level, error) {
	l, err := s.catalog.FindLevel(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLevelNotFound
	}
	return l, nil
}

// levelNameTaken busca otro nivel con el mismo nombre (sin distinguir
// mayúsculas). exceptID excluye al que se está editando.
func (s *CatalogService) levelNameTaken(ctx context.Context, name string, exceptID int) error {
	all, err := s.catalog.ListLevels(ctx)
	if err != nil {
		return err
	}
	for _, l := range all {
		if l.LevelID != exceptID && strings.EqualFold(l.Name, name) {
			return ErrDuplicateName
		}
	}
	return nil
}

func (s *CatalogService) CreateLevel(ctx context.Context, name string) (*models.Level, error) {
	name = strings.TrimSpace(name)
	if err := s.levelNameTaken(ctx, name, 0); err != nil {
		return nil, err
	}
	return s.catalog.InsertLevel(ctx, name)
}

func (s *CatalogService) UpdateLevel(ctx context.Context, id int, name string) (*models.Level, error) {
	l, err := s.GetLevel(ctx, id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := s.levelNameTaken(ctx, name, id); err != nil {
		return nil, err
	}
	err = s.catalog.UpdateLevel(ctx, id, name)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrLevelNotFound
	}
	if err != nil {
		return nil, err
	}
	l.Name = name
	return l, nil
}

// DeleteLevel falla con ErrLevelInUse si alguna preferencia apunta al nivel.
func (s *CatalogService) DeleteLevel(ctx context.Context, id int) error {
	if _, err := s.GetLevel(ctx, id); err != nil {
		return err
	}
	n, err := s.users.CountByLevel(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d usuarios", ErrLevelInUse, n)
	}
	deleted, err := s.catalog.DeleteLevel(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLevelNotFound
	}
	return nil
}

func (s *CatalogService) SeedLevels(ctx context.Context) error {
	return s.catalog.SeedLevels(ctx)
}

func invalidateAllRecommendations(ctx context.Context) {
	if n, err := cache.DeletePattern(ctx, "rec:*"); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("[cache] no se pudo invalidar recomendaciones")
	} else if n > 0 {
		logging.Ctx(ctx).Debug().Int("keys", n).Msg("[cache] recomendaciones invalidadas")
	}
}

func invalidateUserRecommendations(ctx context.Context, userID int) {
	if _, err := cache.DeletePattern(ctx, userCachePattern(userID)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("user", userID).Msg("[cache] no se pudo invalidar recomendaciones del usuario")
	}
}
