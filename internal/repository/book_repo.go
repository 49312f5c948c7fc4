package repository

import (
	"context"
	"errors"
	"regexp"

	"biblioteca-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookRepository struct {
	col *mongo.Collection
}

func NewBookRepository(d *mongo.Database) *BookRepository {
	return &BookRepository{col: d.Collection("books")}
}

func (r *BookRepository) GetByID(ctx context.Context, bookID int) (*models.BookDoc, error) {
	var b models.BookDoc
	err := r.col.FindOne(ctx, bson.M{"bookId": bookID}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepository) GetNextBookID(ctx context.Context) (int, error) {
	return nextID(ctx, r.col, "bookId")
}

func (r *BookRepository) Insert(ctx context.Context, b *models.BookDoc) error {
	_, err := r.col.InsertOne(ctx, b)
	return err
}

// Search filtra por título (regex case-insensitive), categoría y lenguaje.
func (r *BookRepository) Search(
	ctx context.Context,
	q string,
	categoryID, languageID int,
	limit, offset int,
) ([]models.BookDoc, error) {

	filter := bson.M{}
	if q != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	}
	if categoryID > 0 {
		filter["categories.categoryId"] = categoryID
	}
	if languageID > 0 {
		filter["languages.languageId"] = languageID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "bookId", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.BookDoc](ctx, cur)
}

func newestFirst(limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "bookId", Value: -1}}).
		SetLimit(int64(limit))
}

func excluding(filter bson.M, excludeIDs []int) bson.M {
	if len(excludeIDs) > 0 {
		filter["bookId"] = bson.M{"$nin": excludeIDs}
	}
	return filter
}

// FindByAnyTag: libros con alguna de las categorías o alguno de los
// lenguajes, del más nuevo al más viejo.
func (r *BookRepository) FindByAnyTag(ctx context.Context, categoryIDs, languageIDs, excludeIDs []int, limit int) ([]models.BookDoc, error) {
	if limit <= 0 {
		return []models.BookDoc{}, nil
	}
	var or bson.A
	if len(categoryIDs) > 0 {
		or = append(or, bson.M{"categories.categoryId": bson.M{"$in": categoryIDs}})
	}
	if len(languageIDs) > 0 {
		or = append(or, bson.M{"languages.languageId": bson.M{"$in": languageIDs}})
	}
	if len(or) == 0 {
		return []models.BookDoc{}, nil
	}

	cur, err := r.col.Find(ctx, excluding(bson.M{"$or": or}, excludeIDs), newestFirst(limit))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.BookDoc](ctx, cur)
}

func (r *BookRepository) FindRecent(ctx context.Context, excludeIDs []int, limit int) ([]models.BookDoc, error) {
	if limit <= 0 {
		return []models.BookDoc{}, nil
	}
	cur, err := r.col.Find(ctx, excluding(bson.M{}, excludeIDs), newestFirst(limit))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.BookDoc](ctx, cur)
}

// Update aplica un $set parcial. Sin coincidencias devuelve ErrNoDocuments.
func (r *BookRepository) Update(ctx context.Context, bookID int, set bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"bookId": bookID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, bookID int) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"bookId": bookID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
