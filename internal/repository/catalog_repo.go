package repository

import (
	"context"
	"errors"

	"biblioteca-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogRepository cubre los vocabularios (categorías, lenguajes, niveles)
// y las entidades chicas que cuelgan de los libros (autores, editoriales).
type CatalogRepository struct {
	categories *mongo.Collection
	languages  *mongo.Collection
	levels     *mongo.Collection
	authors    *mongo.Collection
	publishers *mongo.Collection
}

func NewCatalogRepository(d *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		categories: d.Collection("categories"),
		languages:  d.Collection("languages"),
		levels:     d.Collection("levels"),
		authors:    d.Collection("authors"),
		publishers: d.Collection("publishers"),
	}
}

func sortedBy(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: 1}})
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	cur, err := r.categories.Find(ctx, bson.M{}, sortedBy("categoryId"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Category](ctx, cur)
}

func (r *CatalogRepository) ListLanguages(ctx context.Context) ([]models.Language, error) {
	cur, err := r.languages.Find(ctx, bson.M{}, sortedBy("languageId"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Language](ctx, cur)
}

func (r *CatalogRepository) ListLevels(ctx context.Context) ([]models.Level, error) {
	cur, err := r.levels.Find(ctx, bson.M{}, sortedBy("levelId"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Level](ctx, cur)
}

func (r *CatalogRepository) FindLevel(ctx context.Context, levelID int) (*models.Level, error) {
	var l models.Level
	err := r.levels.FindOne(ctx, bson.M{"levelId": levelID}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *CatalogRepository) InsertCategory(ctx context.Context, name string) (*models.Category, error) {
	id, err := nextID(ctx, r.categories, "categoryId")
	if err != nil {
		return nil, err
	}
	c := &models.Category{CategoryID: id, Name: name}
	if _, err := r.categories.InsertOne(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CatalogRepository) InsertLanguage(ctx context.Context, name string) (*models.Language, error) {
	id, err := nextID(ctx, r.languages, "languageId")
	if err != nil {
		return nil, err
	}
	l := &models.Language{LanguageID: id, Name: name}
	if _, err := r.languages.InsertOne(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *CatalogRepository) InsertLevel(ctx context.Context, name string) (*models.Level, error) {
	id, err := nextID(ctx, r.levels, "levelId")
	if err != nil {
		return nil, err
	}
	l := &models.Level{LevelID: id, Name: name}
	if _, err := r.levels.InsertOne(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *CatalogRepository) UpdateLevel(ctx context.Context, levelID int, name string) error {
	res, err := r.levels.UpdateOne(ctx, bson.M{"levelId": levelID}, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CatalogRepository) DeleteLevel(ctx context.Context, levelID int) (bool, error) {
	res, err := r.levels.DeleteOne(ctx, bson.M{"levelId": levelID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// SeedLevels inserta los niveles por defecto que falten (upsert por id).
func (r *CatalogRepository) SeedLevels(ctx context.Context) error {
	for _, l := range models.DefaultLevels {
		_, err := r.levels.UpdateOne(ctx,
			bson.M{"levelId": l.LevelID},
			bson.M{"$setOnInsert": l},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// EnsureAuthor devuelve el autor con ese nombre, creándolo si no existe.
func (r *CatalogRepository) EnsureAuthor(ctx context.Context, name string) (models.Author, error) {
	var a models.Author
	err := r.authors.FindOne(ctx, bson.M{"name": name}).Decode(&a)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return a, err
	}
	id, err := nextID(ctx, r.authors, "authorId")
	if err != nil {
		return a, err
	}
	a = models.Author{AuthorID: id, Name: name}
	_, err = r.authors.InsertOne(ctx, a)
	return a, err
}

func (r *CatalogRepository) EnsurePublisher(ctx context.Context, name string) (models.Publisher, error) {
	var p models.Publisher
	err := r.publishers.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return p, err
	}
	id, err := nextID(ctx, r.publishers, "publisherId")
	if err != nil {
		return p, err
	}
	p = models.Publisher{PublisherID: id, Name: name}
	_, err = r.publishers.InsertOne(ctx, p)
	return p, err
}
