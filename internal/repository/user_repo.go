package repository

import (
	"context"
	"errors"

	"biblioteca-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(d *mongo.Database) *UserRepository {
	return &UserRepository{col: d.Collection("users")}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.UserDoc, error) {
	var u models.UserDoc
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.UserDoc, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByRegistration(ctx context.Context, registration string) (*models.UserDoc, error) {
	return r.findOne(ctx, bson.M{"registration": registration})
}

func (r *UserRepository) FindByID(ctx context.Context, userID int) (*models.UserDoc, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *UserRepository) GetNextUserID(ctx context.Context) (int, error) {
	return nextID(ctx, r.col, "userId")
}

func (r *UserRepository) Insert(ctx context.Context, u *models.UserDoc) error {
	_, err := r.col.InsertOne(ctx, u)
	return err
}

// ListActive: usuarios activos ordenados por userId (población del K-Means).
func (r *UserRepository) ListActive(ctx context.Context) ([]models.UserDoc, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"state": models.UserStateActive},
		options.Find().SetSort(bson.D{{Key: "userId", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.UserDoc](ctx, cur)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.UserDoc, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "userId", Value: 1}}).
			SetLimit(int64(limit)).
			SetSkip(int64(offset)),
	)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.UserDoc](ctx, cur)
}

// UpdateByID aplica un $set parcial sobre el usuario.
func (r *UserRepository) UpdateByID(ctx context.Context, userID int, update bson.M) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *UserRepository) SetPreference(ctx context.Context, userID int, p *models.PreferenceDoc) error {
	return r.UpdateByID(ctx, userID, bson.M{"preference": p, "updatedAt": nowString()})
}

func (r *UserRepository) ClearPreference(ctx context.Context, userID int) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$unset": bson.M{"preference": ""}, "$set": bson.M{"updatedAt": nowString()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, userID int) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// CountByLevel: usuarios cuya preferencia apunta al nivel.
func (r *UserRepository) CountByLevel(ctx context.Context, levelID int) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"preference.levelId": levelID})
}
