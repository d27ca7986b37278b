// Package store is the document persistence layer behind every collection.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/meetdoc-api/internal/metrics"
	"github.com/harentsoaR/meetdoc-api/internal/models"
)

const (
	UsersCollection    = "users"
	DoctorsCollection  = "doctors"
	MeetingsCollection = "meetings"
	PaymentsCollection = "payments"
	FeedbackCollection = "feedback"
)

// ErrNotFound is returned by FindOne when no document matches.
var ErrNotFound = errors.New("document not found")

// Collection is one set of documents of type T. Filters are top-level
// equality matches and updates are $set patches. Every operation is atomic
// on a single document only.
type Collection[T any] interface {
	Name() string
	Find(ctx context.Context, filter bson.M) ([]T, error)
	FindOne(ctx context.Context, filter bson.M) (*T, error)
	InsertOne(ctx context.Context, doc *T) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, filter, set bson.M) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter bson.M) (DeleteResult, error)
}

// InsertResult mirrors the driver's insert acknowledgement. InsertedID is nil
// when nothing was written.
type InsertResult struct {
	Acknowledged bool                `json:"acknowledged"`
	InsertedID   *primitive.ObjectID `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type nopPinger struct{}

func (nopPinger) Ping(ctx context.Context) error { return ctx.Err() }

// NopPinger is the Pinger of stores that live in process.
func NopPinger() Pinger { return nopPinger{} }

// Collections bundles the five independent collections of the service.
type Collections struct {
	Users    Collection[models.User]
	Doctors  Collection[models.Doctor]
	Meetings Collection[models.Meeting]
	Payments Collection[models.Payment]
	Feedback Collection[models.Feedback]
}

func NewMemoryCollections() Collections {
	return Collections{
		Users:    NewMemoryCollection[models.User](UsersCollection),
		Doctors:  NewMemoryCollection[models.Doctor](DoctorsCollection),
		Meetings: NewMemoryCollection[models.Meeting](MeetingsCollection),
		Payments: NewMemoryCollection[models.Payment](PaymentsCollection),
		Feedback: NewMemoryCollection[models.Feedback](FeedbackCollection),
	}
}

// Instrument wraps every collection with operation metrics.
func (c Collections) Instrument(m *metrics.Metrics) Collections {
	return Collections{
		Users:    Instrument(c.Users, m),
		Doctors:  Instrument(c.Doctors, m),
		Meetings: Instrument(c.Meetings, m),
		Payments: Instrument(c.Payments, m),
		Feedback: Instrument(c.Feedback, m),
	}
}

func orEmpty(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}
