// Package services holds the operations behind each HTTP route. Every
// operation is a single read or write against one collection, except
// doctor registration which reads two.
package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/harentsoaR/meetdoc-api/internal/errors"
	"github.com/harentsoaR/meetdoc-api/internal/store"
)

// Registration reports the outcome of an idempotent create.
type Registration struct {
	Created    bool
	InsertedID primitive.ObjectID
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.InvalidIdentifier(id, err)
	}
	return oid, nil
}

func byID(oid primitive.ObjectID) bson.M {
	return bson.M{"_id": oid}
}

func byEmail(email string) bson.M {
	return bson.M{"email": email}
}

// findOne converts store.ErrNotFound into a NotFound application error.
func findOne[T any](ctx context.Context, c store.Collection[T], filter bson.M) (*T, error) {
	doc, err := c.FindOne(ctx, filter)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound(c.Name(), err)
	}
	return doc, err
}

func emailExists[T any](ctx context.Context, c store.Collection[T], email string) (bool, error) {
	_, err := c.FindOne(ctx, byEmail(email))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// setFields collects the non-nil fields of a patch into a $set document.
type setFields bson.M

func (s setFields) str(key string, v *string) {
	if v != nil {
		s[key] = *v
	}
}

func (s setFields) val(key string, v any) {
	if v != nil {
		s[key] = v
	}
}

func (s setFields) patch() (bson.M, error) {
	if len(s) == 0 {
		return nil, apperrors.BadRequest("No update fields provided", nil)
	}
	return bson.M(s), nil
}
