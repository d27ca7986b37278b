package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/meetdoc-api/internal/models"
	"github.com/harentsoaR/meetdoc-api/internal/store"
)

type FeedbackService struct {
	feedback store.Collection[models.Feedback]
}

func NewFeedbackService(feedback store.Collection[models.Feedback]) *FeedbackService {
	return &FeedbackService{feedback: feedback}
}

func (s *FeedbackService) Submit(ctx context.Context, f *models.Feedback) (primitive.ObjectID, error) {
	doc := *f
	doc.ID = primitive.NilObjectID
	return s.feedback.InsertOne(ctx, &doc)
}

func (s *FeedbackService) List(ctx context.Context) ([]models.Feedback, error) {
	return s.feedback.Find(ctx, nil)
}
