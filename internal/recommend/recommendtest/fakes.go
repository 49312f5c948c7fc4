// Package recommendtest trae implementaciones en memoria de los puertos
// del recomendador para tests.
package recommendtest

import (
	"context"
	"slices"
	"sync"

	"biblioteca-api/internal/models"
	"biblioteca-api/internal/recommend"
)

type Vocabulary struct {
	Categories []models.Category
	Languages  []models.Language
	Levels     []models.Level
	Err        error
}

func (v *Vocabulary) ListCategories(context.Context) ([]models.Category, error) {
	return v.Categories, v.Err
}

func (v *Vocabulary) ListLanguages(context.Context) ([]models.Language, error) {
	return v.Languages, v.Err
}

func (v *Vocabulary) ListLevels(context.Context) ([]models.Level, error) {
	return v.Levels, v.Err
}

type Users struct {
	mu    sync.Mutex
	Users []models.UserDoc
	Err   error
	// ListCalls cuenta las llamadas a ListActive (una por entrenamiento).
	ListCalls int
}

func (u *Users) Put(doc models.UserDoc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.Users {
		if u.Users[i].UserID == doc.UserID {
			u.Users[i] = doc
			return
		}
	}
	u.Users = append(u.Users, doc)
}

func (u *Users) FindByID(_ context.Context, id int) (*models.UserDoc, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	for i := range u.Users {
		if u.Users[i].UserID == id {
			doc := u.Users[i]
			return &doc, nil
		}
	}
	return nil, nil
}

func (u *Users) ListActive(context.Context) ([]models.UserDoc, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ListCalls++
	if u.Err != nil {
		return nil, u.Err
	}
	var out []models.UserDoc
	for _, doc := range u.Users {
		if doc.IsActive() {
			out = append(out, doc)
		}
	}
	return out, nil
}

type Books struct {
	Books []models.BookDoc
	Err   error
}

func (b *Books) sorted() []models.BookDoc {
	out := slices.Clone(b.Books)
	slices.SortFunc(out, func(x, y models.BookDoc) int { return y.BookID - x.BookID })
	return out
}

func (b *Books) FindByAnyTag(_ context.Context, cats, langs, exclude []int, limit int) ([]models.BookDoc, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	var out []models.BookDoc
	for _, bk := range b.sorted() {
		if len(out) >= limit {
			break
		}
		if slices.Contains(exclude, bk.BookID) || !hasTag(bk, cats, langs) {
			continue
		}
		out = append(out, bk)
	}
	return out, nil
}

func (b *Books) FindRecent(_ context.Context, exclude []int, limit int) ([]models.BookDoc, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	var out []models.BookDoc
	for _, bk := range b.sorted() {
		if len(out) >= limit {
			break
		}
		if !slices.Contains(exclude, bk.BookID) {
			out = append(out, bk)
		}
	}
	return out, nil
}

func hasTag(b models.BookDoc, cats, langs []int) bool {
	for _, c := range b.Categories {
		if slices.Contains(cats, c.CategoryID) {
			return true
		}
	}
	for _, l := range b.Languages {
		if slices.Contains(langs, l.LanguageID) {
			return true
		}
	}
	return false
}

// Store guarda el artefacto en memoria y cuenta los Save.
type Store struct {
	mu      sync.Mutex
	art     *recommend.Artifact
	Saves   int
	SaveErr error
	LoadErr error
}

func (s *Store) Load(context.Context) (*recommend.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.art == nil {
		return nil, recommend.ErrModelNotFound
	}
	return s.art, nil
}

func (s *Store) Save(_ context.Context, a *recommend.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.art = a
	s.Saves++
	return nil
}

// Helpers para armar datos.

func Ptr[T any](v T) *T { return &v }

func User(id int, levelID *int, cats, langs []int) models.UserDoc {
	u := models.UserDoc{UserID: id, Name: "user", State: models.UserStateActive}
	if levelID != nil || cats != nil || langs != nil {
		u.Preference = &models.PreferenceDoc{LevelID: levelID, CategoryIDs: cats, LanguageIDs: langs}
	}
	return u
}

func Book(id int, cats, langs []int) models.BookDoc {
	b := models.BookDoc{BookID: id, Title: "book", TotalPages: 100}
	for _, c := range cats {
		b.Categories = append(b.Categories, models.Category{CategoryID: c})
	}
	for _, l := range langs {
		b.Languages = append(b.Languages, models.Language{LanguageID: l})
	}
	return b
}
