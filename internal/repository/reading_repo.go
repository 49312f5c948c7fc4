package repository

import (
	"context"
	"errors"

	"biblioteca-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReadingRepository struct {
	col *mongo.Collection
}

func NewReadingRepository(d *mongo.Database) *ReadingRepository {
	return &ReadingRepository{col: d.Collection("readings")}
}

func (r *ReadingRepository) Insert(ctx context.Context, rd *models.ReadingDoc) error {
	_, err := r.col.InsertOne(ctx, rd)
	return err
}

func (r *ReadingRepository) Find(ctx context.Context, userID, bookID int) (*models.ReadingDoc, error) {
	var rd models.ReadingDoc
	err := r.col.FindOne(ctx, bson.M{"userId": userID, "bookId": bookID}).Decode(&rd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

// ListByUser: lecturas del usuario, opcionalmente filtradas por estado,
// la más reciente primero.
func (r *ReadingRepository) ListByUser(ctx context.Context, userID int, state string, limit, offset int) ([]models.ReadingDoc, error) {
	filter := bson.M{"userId": userID}
	if state != "" {
		filter["state"] = state
	}
	cur, err := r.col.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
			SetLimit(int64(limit)).
			SetSkip(int64(offset)),
	)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.ReadingDoc](ctx, cur)
}

func (r *ReadingRepository) Update(ctx context.Context, userID, bookID int, set bson.M) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "bookId": bookID},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ReadingRepository) Delete(ctx context.Context, userID, bookID int) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"userId": userID, "bookId": bookID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *ReadingRepository) DeleteByUser(ctx context.Context, userID int) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ReadingRepository) DeleteByBook(ctx context.Context, bookID int) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"bookId": bookID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Totals suma páginas leídas y cuenta lecturas del usuario en un solo $group.
func (r *ReadingRepository) Totals(ctx context.Context, userID int) (pages, count int, err error) {
	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"pages": bson.M{"$sum": "$pagesRead"},
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return 0, 0, err
	}
	rows, err := decodeAll[bson.M](ctx, cur)
	if err != nil || len(rows) == 0 {
		return 0, 0, err
	}
	return asInt(rows[0]["pages"]), asInt(rows[0]["count"]), nil
}
