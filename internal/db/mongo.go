package db

import (
	"context"
	"time"

	"biblioteca-api/internal/config"
	"biblioteca-api/internal/logging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

func InitMongo(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logging.Fatal().Err(err).Msg("[mongo] error conectando")
	}

	if err := client.Ping(ctx, nil); err != nil {
		logging.Fatal().Err(err).Msg("[mongo] ping falló")
	}

	mongoClient = client
	mongoDB = client.Database(cfg.MongoDB)
	logging.Info().Str("db", cfg.MongoDB).Msg("[mongo] conectado")

	if err := EnsureIndexes(ctx, mongoDB); err != nil {
		logging.Warn().Err(err).Msg("[mongo] no se pudieron crear índices")
	}
}

func DB() *mongo.Database {
	return mongoDB
}

func Disconnect(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}
	return mongoClient.Disconnect(ctx)
}

// EnsureIndexes crea los índices que usan los repositorios (ids únicos,
// tags de libros para el recomendador y lecturas por usuario+libro).
func EnsureIndexes(ctx context.Context, d *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "registration", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "state", Value: 1}}},
		},
		"books": {
			{Keys: bson.D{{Key: "bookId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "categories.categoryId", Value: 1}}},
			{Keys: bson.D{{Key: "languages.languageId", Value: 1}}},
		},
		"readings": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "bookId", Value: 1}}, Options: unique},
		},
		"categories": {
			{Keys: bson.D{{Key: "categoryId", Value: 1}}, Options: unique},
		},
		"languages": {
			{Keys: bson.D{{Key: "languageId", Value: 1}}, Options: unique},
		},
		"levels": {
			{Keys: bson.D{{Key: "levelId", Value: 1}}, Options: unique},
		},
		"authors": {
			{Keys: bson.D{{Key: "authorId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		"publishers": {
			{Keys: bson.D{{Key: "publisherId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		"recommendations": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for col, models := range specs {
		if _, err := d.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
