package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/harentsoaR/meetdoc-api/internal/errors"
)

// MemoryCollection keeps documents in process. It supports the same
// filters ($eq by value, $ne, $exists) and $set patches the services issue
// against MongoDB.
type MemoryCollection[T any] struct {
	name string

	mu   sync.RWMutex
	docs []bson.M
}

func NewMemoryCollection[T any](name string) *MemoryCollection[T] {
	return &MemoryCollection[T]{name: name}
}

func (c *MemoryCollection[T]) Name() string { return c.name }

func (c *MemoryCollection[T]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.FromStore(err)
	}
	want, err := normalize(orEmpty(filter))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]T, 0)
	for _, doc := range c.docs {
		if !matches(doc, want) {
			continue
		}
		var out T
		if err := decode(doc, &out); err != nil {
			return nil, apperrors.Internal(err)
		}
		docs = append(docs, out)
	}
	return docs, nil
}

func (c *MemoryCollection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.FromStore(err)
	}
	want, err := normalize(orEmpty(filter))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, doc := range c.docs {
		if matches(doc, want) {
			var out T
			if err := decode(doc, &out); err != nil {
				return nil, apperrors.Internal(err)
			}
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (c *MemoryCollection[T]) InsertOne(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, apperrors.FromStore(err)
	}
	m, err := normalize(doc)
	if err != nil {
		return primitive.NilObjectID, apperrors.Internal(err)
	}

	id, ok := m["_id"].(primitive.ObjectID)
	if !ok {
		id = primitive.NewObjectID()
		m["_id"] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.docs {
		if existing["_id"] == id {
			return primitive.NilObjectID, apperrors.Conflict("document already exists", fmt.Errorf("duplicate _id %s", id.Hex()))
		}
	}
	c.docs = append(c.docs, m)
	return id, nil
}

func (c *MemoryCollection[T]) UpdateOne(ctx context.Context, filter, set bson.M) (UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return UpdateResult{}, apperrors.FromStore(err)
	}
	want, err := normalize(orEmpty(filter))
	if err != nil {
		return UpdateResult{}, apperrors.Internal(err)
	}
	patch, err := normalize(orEmpty(set))
	if err != nil {
		return UpdateResult{}, apperrors.Internal(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range c.docs {
		if !matches(doc, want) {
			continue
		}
		res := UpdateResult{Acknowledged: true, MatchedCount: 1}
		for k, v := range patch {
			if cur, ok := doc[k]; !ok || !reflect.DeepEqual(cur, v) {
				doc[k] = v
				res.ModifiedCount = 1
			}
		}
		return res, nil
	}
	return UpdateResult{Acknowledged: true}, nil
}

func (c *MemoryCollection[T]) DeleteOne(ctx context.Context, filter bson.M) (DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return DeleteResult{}, apperrors.FromStore(err)
	}
	want, err := normalize(orEmpty(filter))
	if err != nil {
		return DeleteResult{}, apperrors.Internal(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if matches(doc, want) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return DeleteResult{Acknowledged: true}, nil
}

// normalize round-trips v through BSON so values compare the way they are stored.
func normalize(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if ops, isOp := operators(want); isOp {
			if !matchOperators(got, ok, ops) {
				return false
			}
			continue
		}
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// operators returns want as a query operator document such as {"$ne": v}.
func operators(want any) (bson.M, bool) {
	ops := bson.M{}
	switch w := want.(type) {
	case bson.M:
		ops = w
	case bson.D:
		for _, e := range w {
			ops[e.Key] = e.Value
		}
	default:
		return nil, false
	}
	if len(ops) == 0 {
		return nil, false
	}
	for k := range ops {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return ops, true
}

// matchOperators treats an unsupported operator as a non-match.
func matchOperators(got any, present bool, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$eq":
			if !present || !reflect.DeepEqual(got, arg) {
				return false
			}
		case "$ne":
			if present && reflect.DeepEqual(got, arg) {
				return false
			}
		case "$exists":
			if want, _ := arg.(bool); want != present {
				return false
			}
		default:
			return false
		}
	}
	return true
}
