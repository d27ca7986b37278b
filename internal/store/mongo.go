package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/harentsoaR/meetdoc-api/internal/errors"
	"github.com/harentsoaR/meetdoc-api/internal/models"
)

// Client owns the process-wide MongoDB connection. Acquire it once with
// Connect and release it with Close on shutdown.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	c := &Client{client: client, db: client.Database(database)}
	if err := c.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	log.Info().Str("database", database).Msg("Pinged deployment, connected to MongoDB")
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) Collections() Collections {
	return Collections{
		Users:    NewMongoCollection[models.User](c.db, UsersCollection),
		Doctors:  NewMongoCollection[models.Doctor](c.db, DoctorsCollection),
		Meetings: NewMongoCollection[models.Meeting](c.db, MeetingsCollection),
		Payments: NewMongoCollection[models.Payment](c.db, PaymentsCollection),
		Feedback: NewMongoCollection[models.Feedback](c.db, FeedbackCollection),
	}
}

type MongoCollection[T any] struct {
	coll *mongo.Collection
}

func NewMongoCollection[T any](db *mongo.Database, name string) *MongoCollection[T] {
	return &MongoCollection[T]{coll: db.Collection(name)}
}

func (c *MongoCollection[T]) Name() string { return c.coll.Name() }

func (c *MongoCollection[T]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	cursor, err := c.coll.Find(ctx, orEmpty(filter))
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.FromStore(err)
	}
	return docs, nil
}

func (c *MongoCollection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, orEmpty(filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return &doc, nil
}

func (c *MongoCollection[T]) InsertOne(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, apperrors.Conflict("document already exists", err)
		}
		return primitive.NilObjectID, apperrors.FromStore(err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, apperrors.Internal(fmt.Errorf("unexpected inserted id %T", res.InsertedID))
	}
	return id, nil
}

func (c *MongoCollection[T]) UpdateOne(ctx context.Context, filter, set bson.M) (UpdateResult, error) {
	res, err := c.coll.UpdateOne(ctx, orEmpty(filter), bson.M{"$set": set})
	if err != nil {
		return UpdateResult{}, apperrors.FromStore(err)
	}
	return UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

func (c *MongoCollection[T]) DeleteOne(ctx context.Context, filter bson.M) (DeleteResult, error) {
	res, err := c.coll.DeleteOne(ctx, orEmpty(filter))
	if err != nil {
		return DeleteResult{}, apperrors.FromStore(err)
	}
	return DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}
