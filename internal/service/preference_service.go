package service

import (
	"context"

	"biblioteca-api/internal/models"
)

type PreferenceService struct {
	users   UserStore
	catalog CatalogStore
}

func NewPreferenceService(u UserStore, c CatalogStore) *PreferenceService {
	return &PreferenceService{users: u, catalog: c}
}

// PreferenceInput: en Update los campos nil no se tocan; las listas
// presentes reemplazan a las anteriores.
type PreferenceInput struct {
	LevelID     *int
	CategoryIDs *[]int
	LanguageIDs *[]int
}

func (s *PreferenceService) user(ctx context.Context, userID int) (*models.UserDoc, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *PreferenceService) Get(ctx context.Context, userID int) (*models.PreferenceDoc, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Preference == nil {
		return nil, ErrPreferenceNotFound
	}
	return u.Preference, nil
}

func (s *PreferenceService) Create(ctx context.Context, userID int, in PreferenceInput) (*models.PreferenceDoc, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Preference != nil {
		return nil, ErrPreferenceExists
	}

	ts := now()
	p := &models.PreferenceDoc{CategoryIDs: []int{}, LanguageIDs: []int{}, CreatedAt: ts, UpdatedAt: ts}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	if err := s.users.SetPreference(ctx, userID, p); err != nil {
		return nil, err
	}
	invalidateUserRecommendations(ctx, userID)
	return p, nil
}

func (s *PreferenceService) Update(ctx context.Context, userID int, in PreferenceInput) (*models.PreferenceDoc, error) {
	if in.LevelID == nil && in.CategoryIDs == nil && in.LanguageIDs == nil {
		return nil, ErrNoFields
	}
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Preference == nil {
		return nil, ErrPreferenceNotFound
	}

	p := *u.Preference
	if err := s.apply(ctx, &p, in); err != nil {
		return nil, err
	}
	p.UpdatedAt = now()
	if err := s.users.SetPreference(ctx, userID, &p); err != nil {
		return nil, err
	}
	invalidateUserRecommendations(ctx, userID)
	return &p, nil
}

func (s *PreferenceService) Delete(ctx context.Context, userID int) error {
	u, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if u.Preference == nil {
		return ErrPreferenceNotFound
	}
	if err := s.users.ClearPreference(ctx, userID); err != nil {
		return err
	}
	invalidateUserRecommendations(ctx, userID)
	return nil
}

// apply valida el nivel y filtra ids desconocidos o repetidos.
func (s *PreferenceService) apply(ctx context.Context, p *models.PreferenceDoc, in PreferenceInput) error {
	if in.LevelID != nil {
		lvl, err := s.catalog.FindLevel(ctx, *in.LevelID)
		if err != nil {
			return err
		}
		if lvl == nil {
			return ErrLevelNotFound
		}
		id := lvl.LevelID
		p.LevelID = &id
	}
	if in.CategoryIDs != nil {
		cats, err := s.catalog.ListCategories(ctx)
		if err != nil {
			return err
		}
		p.CategoryIDs = known(*in.CategoryIDs, cats, func(c models.Category) int { return c.CategoryID })
	}
	if in.LanguageIDs != nil {
		langs, err := s.catalog.ListLanguages(ctx)
		if err != nil {
			return err
		}
		p.LanguageIDs = known(*in.LanguageIDs, langs, func(l models.Language) int { return l.LanguageID })
	}
	return nil
}

func known[T any](ids []int, all []T, id func(T) int) []int {
	items := pick(all, uniqueInts(ids), id)
	out := make([]int, len(items))
	for i, v := range items {
		out[i] = id(v)
	}
	return out
}
