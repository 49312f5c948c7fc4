package service

import (
	"context"
	"errors"
	"strings"

	"biblioteca-api/internal/googlebooks"
	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type BookService struct {
	books    BookStore
	catalog  CatalogStore
	readings ReadingStore
	google   BookSearcher
}

func NewBookService(b BookStore, c CatalogStore, r ReadingStore, google BookSearcher) *BookService {
	return &BookService{books: b, catalog: c, readings: r, google: google}
}

func (s *BookService) GetBook(ctx context.Context, id int) (*models.BookDoc, error) {
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookNotFound
	}
	return b, nil
}

func (s *BookService) Search(ctx context.Context, q string, categoryID, languageID, limit, offset int) ([]models.BookDoc, error) {
	return s.books.Search(ctx, q, categoryID, languageID, limit, offset)
}

// Create da de alta un libro. Autores y editorial se crean si no existen;
// ids de categoría o lenguaje desconocidos se ignoran.
func (s *BookService) Create(ctx context.Context, req *models.BookCreateRequest) (*models.BookDoc, error) {
	cats, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	langs, err := s.catalog.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}

	pub, err := s.catalog.EnsurePublisher(ctx, strings.TrimSpace(req.Publisher))
	if err != nil {
		return nil, err
	}
	authors, err := s.authors(ctx, req.Authors)
	if err != nil {
		return nil, err
	}

	id, err := s.books.GetNextBookID(ctx)
	if err != nil {
		return nil, err
	}
	ts := now()
	b := &models.BookDoc{
		BookID:     id,
		Title:      strings.TrimSpace(req.Title),
		TotalPages: req.TotalPages,
		Synopsis:   req.Synopsis,
		FileURL:    req.FileURL,
		CoverURL:   req.CoverURL,
		Publisher:  &pub,
		Authors:    authors,
		Categories: pick(cats, uniqueInts(req.CategoryIDs), func(c models.Category) int { return c.CategoryID }),
		Languages:  pick(langs, uniqueInts(req.LanguageIDs), func(l models.Language) int { return l.LanguageID }),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if err := s.books.Insert(ctx, b); err != nil {
		return nil, err
	}
	invalidateAllRecommendations(ctx)
	return b, nil
}

// Update modifica un libro existente. Cambiar categorías o lenguajes
// altera los tags que usa el fallback, así que se invalida todo el cache.
func (s *BookService) Update(ctx context.Context, id int, req *models.BookUpdateRequest) (*models.BookDoc, error) {
	b, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if req.Title != nil {
		b.Title = strings.TrimSpace(*req.Title)
		set["title"] = b.Title
	}
	if req.TotalPages != nil {
		b.TotalPages = *req.TotalPages
		set["totalPages"] = b.TotalPages
	}
	if req.Synopsis != nil {
		b.Synopsis = *req.Synopsis
		set["synopsis"] = b.Synopsis
	}
	if req.FileURL != nil {
		b.FileURL = *req.FileURL
		set["fileUrl"] = b.FileURL
	}
	if req.CoverURL != nil {
		b.CoverURL = *req.CoverURL
		set["coverUrl"] = b.CoverURL
	}
	if req.Publisher != nil {
		pub, err := s.catalog.EnsurePublisher(ctx, strings.TrimSpace(*req.Publisher))
		if err != nil {
			return nil, err
		}
		b.Publisher = &pub
		set["publisher"] = b.Publisher
	}
	if req.Authors != nil {
		if b.Authors, err = s.authors(ctx, *req.Authors); err != nil {
			return nil, err
		}
		set["authors"] = b.Authors
	}
	if req.CategoryIDs != nil {
		cats, err := s.catalog.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		b.Categories = pick(cats, uniqueInts(*req.CategoryIDs), func(c models.Category) int { return c.CategoryID })
		set["categories"] = b.Categories
	}
	if req.LanguageIDs != nil {
		langs, err := s.catalog.ListLanguages(ctx)
		if err != nil {
			return nil, err
		}
		b.Languages = pick(langs, uniqueInts(*req.LanguageIDs), func(l models.Language) int { return l.LanguageID })
		set["languages"] = b.Languages
	}
	if len(set) == 0 {
		return nil, ErrNoFields
	}

	b.UpdatedAt = now()
	set["updatedAt"] = b.UpdatedAt
	err = s.books.Update(ctx, id, set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	invalidateAllRecommendations(ctx)
	return b, nil
}

// Delete borra el libro y las lecturas que lo referencian.
func (s *BookService) Delete(ctx context.Context, id int) error {
	deleted, err := s.books.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrBookNotFound
	}
	n, err := s.readings.DeleteByBook(ctx, id)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int("book", id).Int64("readings", n).Msg("[books] libro eliminado")
	invalidateAllRecommendations(ctx)
	return nil
}

// authors resuelve nombres a autores, creando los que falten. Ignora vacíos
// y repetidos.
func (s *BookService) authors(ctx context.Context, names []string) ([]models.Author, error) {
	out := make([]models.Author, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		a, err := s.catalog.EnsureAuthor(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// SearchGoogle consulta Google Books para prellenar un alta.
func (s *BookService) SearchGoogle(ctx context.Context, q googlebooks.Query) ([]models.BookPrefill, error) {
	return s.google.Search(ctx, q)
}

// pick devuelve los elementos de all cuyos ids están en ids, en el orden de ids.
func pick[T any](all []T, ids []int, id func(T) int) []T {
	byID := make(map[int]T, len(all))
	for _, v := range all {
		byID[id(v)] = v
	}
	out := make([]T, 0, len(ids))
	for _, i := range ids {
		if v, ok := byID[i]; ok {
			out = append(out, v)
		}
	}
	return out
}

func uniqueInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
