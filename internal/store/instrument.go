package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/meetdoc-api/internal/metrics"
)

type instrumented[T any] struct {
	next Collection[T]
	m    *metrics.Metrics
}

// Instrument counts and times every operation on next.
func Instrument[T any](next Collection[T], m *metrics.Metrics) Collection[T] {
	return &instrumented[T]{next: next, m: m}
}

func (c *instrumented[T]) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	name := c.next.Name()
	c.m.StoreOperations.WithLabelValues(name, op, status).Inc()
	c.m.StoreLatency.WithLabelValues(name, op).Observe(time.Since(start).Seconds())
}

func (c *instrumented[T]) Name() string { return c.next.Name() }

func (c *instrumented[T]) Find(ctx context.Context, filter bson.M) (docs []T, err error) {
	defer func(start time.Time) { c.observe("find", start, err) }(time.Now())
	return c.next.Find(ctx, filter)
}

func (c *instrumented[T]) FindOne(ctx context.Context, filter bson.M) (doc *T, err error) {
	defer func(start time.Time) { c.observe("find_one", start, err) }(time.Now())
	return c.next.FindOne(ctx, filter)
}

func (c *instrumented[T]) InsertOne(ctx context.Context, doc *T) (id primitive.ObjectID, err error) {
	defer func(start time.Time) { c.observe("insert_one", start, err) }(time.Now())
	return c.next.InsertOne(ctx, doc)
}

func (c *instrumented[T]) UpdateOne(ctx context.Context, filter, set bson.M) (res UpdateResult, err error) {
	defer func(start time.Time) { c.observe("update_one", start, err) }(time.Now())
	return c.next.UpdateOne(ctx, filter, set)
}

func (c *instrumented[T]) DeleteOne(ctx context.Context, filter bson.M) (res DeleteResult, err error) {
	defer func(start time.Time) { c.observe("delete_one", start, err) }(time.Now())
	return c.next.DeleteOne(ctx, filter)
}
