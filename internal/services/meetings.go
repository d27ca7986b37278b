package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/harentsoaR/meetdoc-api/internal/errors"
	"github.com/harentsoaR/meetdoc-api/internal/models"
	"github.com/harentsoaR/meetdoc-api/internal/store"
)

// MeetingService creates meetings and advances them through acceptance and payment.
//
// By default Accept and ConfirmPayment are unconditional field writes: they may
// run in any order and repeat freely. With strict set, each goes through
// models.Transition first and an out-of-order move fails with a Conflict.
type MeetingService struct {
	meetings store.Collection[models.Meeting]
	strict   bool
}

func NewMeetingService(meetings store.Collection[models.Meeting], strict bool) *MeetingService {
	return &MeetingService{meetings: meetings, strict: strict}
}

// Request stores m in the requested state.
func (s *MeetingService) Request(ctx context.Context, m *models.Meeting) (primitive.ObjectID, error) {
	doc := *m
	doc.ID = primitive.NilObjectID
	doc.Status = ""
	doc.Payment = ""
	id, err := s.meetings.InsertOne(ctx, &doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	log.Info().Str("id", id.Hex()).Str("email", m.Email).Str("doc_email", m.DocEmail).Msg("meeting requested")
	return id, nil
}

func (s *MeetingService) Accept(ctx context.Context, id string) (store.UpdateResult, error) {
	return s.advance(ctx, id, models.EventAccept, bson.M{"status": models.StatusAccepted})
}

func (s *MeetingService) ConfirmPayment(ctx context.Context, id string) (store.UpdateResult, error) {
	return s.advance(ctx, id, models.EventConfirmPayment, bson.M{"payment": models.PaymentDone})
}

// advance writes set on the meeting. In strict mode the predecessor state is
// part of the update filter, so the check and the write are one atomic
// operation on the document. An unknown id is a zero-match result in both modes.
func (s *MeetingService) advance(ctx context.Context, id string, ev models.MeetingEvent, set bson.M) (store.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return store.UpdateResult{}, err
	}

	filter := byID(oid)
	if s.strict {
		for k, v := range models.StateFilter(ev.From()) {
			filter[k] = v
		}
	}

	res, err := s.meetings.UpdateOne(ctx, filter, set)
	if err != nil {
		return store.UpdateResult{}, err
	}
	if s.strict && res.MatchedCount == 0 {
		return s.rejected(ctx, oid, ev)
	}

	log.Info().
		Str("id", id).
		Str("event", string(ev)).
		Int64("matched", res.MatchedCount).
		Int64("modified", res.ModifiedCount).
		Msg("meeting advanced")
	return res, nil
}

// rejected explains a strict update that matched nothing: either the meeting
// is gone, a zero-effect result, or it is in the wrong state.
func (s *MeetingService) rejected(ctx context.Context, oid primitive.ObjectID, ev models.MeetingEvent) (store.UpdateResult, error) {
	cur, err := s.meetings.FindOne(ctx, byID(oid))
	if errors.Is(err, store.ErrNotFound) {
		return store.UpdateResult{Acknowledged: true}, nil
	}
	if err != nil {
		return store.UpdateResult{}, err
	}

	_, err = models.Transition(cur.State(), ev)
	if err == nil {
		err = fmt.Errorf("%w: %s lost a concurrent update", models.ErrInvalidTransition, ev)
	}
	return store.UpdateResult{}, apperrors.Conflict(err.Error(), err)
}

func (s *MeetingService) List(ctx context.Context) ([]models.Meeting, error) {
	return s.meetings.Find(ctx, nil)
}

func (s *MeetingService) Get(ctx context.Context, id string) (*models.Meeting, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return findOne(ctx, s.meetings, byID(oid))
}

// ListByRequester returns the meetings requested by email.
func (s *MeetingService) ListByRequester(ctx context.Context, email string) ([]models.Meeting, error) {
	return s.meetings.Find(ctx, byEmail(email))
}

// ListByDoctor returns the meetings addressed to the doctor at docEmail.
func (s *MeetingService) ListByDoctor(ctx context.Context, docEmail string) ([]models.Meeting, error) {
	return s.meetings.Find(ctx, bson.M{"doc_email": docEmail})
}

func (s *MeetingService) Delete(ctx context.Context, id string) (store.DeleteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return store.DeleteResult{}, err
	}
	return s.meetings.DeleteOne(ctx, byID(oid))
}
