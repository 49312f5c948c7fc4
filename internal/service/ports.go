package service

import (
	"context"

	"biblioteca-api/internal/googlebooks"
	"biblioteca-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Interfaces que consumen los servicios. Las implementan los repositorios
// de Mongo y, en tests, fakes en memoria.

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.UserDoc, error)
	FindByRegistration(ctx context.Context, registration string) (*models.UserDoc, error)
	FindByID(ctx context.Context, userID int) (*models.UserDoc, error)
	GetNextUserID(ctx context.Context) (int, error)
	Insert(ctx context.Context, u *models.UserDoc) error
	List(ctx context.Context, limit, offset int) ([]models.UserDoc, error)
	UpdateByID(ctx context.Context, userID int, update bson.M) error
	SetPreference(ctx context.Context, userID int, p *models.PreferenceDoc) error
	ClearPreference(ctx context.Context, userID int) error
	DeleteByID(ctx context.Context, userID int) (bool, error)
	CountByLevel(ctx context.Context, levelID int) (int64, error)
}

type CatalogStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListLanguages(ctx context.Context) ([]models.Language, error)
	ListLevels(ctx context.Context) ([]models.Level, error)
	FindLevel(ctx context.Context, levelID int) (*models.Level, error)
	InsertCategory(ctx context.Context, name string) (*models.Category, error)
	InsertLanguage(ctx context.Context, name string) (*models.Language, error)
	InsertLevel(ctx context.Context, name string) (*models.Level, error)
	UpdateLevel(ctx context.Context, levelID int, name string) error
	DeleteLevel(ctx context.Context, levelID int) (bool, error)
	SeedLevels(ctx context.Context) error
	EnsureAuthor(ctx context.Context, name string) (models.Author, error)
	EnsurePublisher(ctx context.Context, name string) (models.Publisher, error)
}

type BookStore interface {
	GetByID(ctx context.Context, bookID int) (*models.BookDoc, error)
	GetNextBookID(ctx context.Context) (int, error)
	Insert(ctx context.Context, b *models.BookDoc) error
	Search(ctx context.Context, q string, categoryID, languageID, limit, offset int) ([]models.BookDoc, error)
	Update(ctx context.Context, bookID int, set bson.M) error
	Delete(ctx context.Context, bookID int) (bool, error)
}

type ReadingStore interface {
	Insert(ctx context.Context, rd *models.ReadingDoc) error
	Find(ctx context.Context, userID, bookID int) (*models.ReadingDoc, error)
	ListByUser(ctx context.Context, userID int, state string, limit, offset int) ([]models.ReadingDoc, error)
	Update(ctx context.Context, userID, bookID int, set bson.M) error
	Delete(ctx context.Context, userID, bookID int) (bool, error)
	DeleteByUser(ctx context.Context, userID int) (int64, error)
	DeleteByBook(ctx context.Context, bookID int) (int64, error)
	Totals(ctx context.Context, userID int) (pages, count int, err error)
}

type HistoryStore interface {
	Insert(ctx context.Context, rec *models.Recommendation) error
	FindByUser(ctx context.Context, userID int, limit int64) ([]models.Recommendation, error)
}

type BookSearcher interface {
	Search(ctx context.Context, q googlebooks.Query) ([]models.BookPrefill, error)
}
