package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/harentsoaR/meetdoc-api/internal/errors"
	"github.com/harentsoaR/meetdoc-api/internal/models"
	"github.com/harentsoaR/meetdoc-api/internal/store"
)

const DefaultCurrency = "usd"

// MaxIntentAmount bounds the price so its minor units stay exact in a float64.
const MaxIntentAmount = 1e13

var ErrProviderNotConfigured = errors.New("payment provider not configured")

// IntentCreator obtains a client secret for a payment of amount minor units.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type PaymentService struct {
	payments store.Collection[models.Payment]
	intents  IntentCreator
}

// NewPaymentService accepts a nil intents; CreateIntent then always fails.
func NewPaymentService(payments store.Collection[models.Payment], intents IntentCreator) *PaymentService {
	return &PaymentService{payments: payments, intents: intents}
}

// Record appends p. Nothing ties it to a meeting.
func (s *PaymentService) Record(ctx context.Context, p *models.Payment) (primitive.ObjectID, error) {
	doc := *p
	doc.ID = primitive.NilObjectID
	id, err := s.payments.InsertOne(ctx, &doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	log.Info().Str("id", id.Hex()).Str("email", p.Email).Msg("payment recorded")
	return id, nil
}

func (s *PaymentService) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	return s.payments.Find(ctx, byEmail(email))
}

// CreateIntent converts amount to minor units and asks the provider for a
// client secret. Provider failures are returned once, never retried.
func (s *PaymentService) CreateIntent(ctx context.Context, amount float64, currency string) (string, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if s.intents == nil {
		return "", apperrors.PaymentProvider(ErrProviderNotConfigured)
	}

	if math.IsNaN(amount) || amount < 0 || amount > MaxIntentAmount {
		return "", apperrors.BadRequest("price out of range", fmt.Errorf("price %v", amount))
	}

	minor := MinorUnits(amount)
	secret, err := s.intents.CreateIntent(ctx, minor, currency)
	if err != nil {
		log.Error().Err(err).Int64("amount", minor).Str("currency", currency).Msg("payment intent failed")
		return "", apperrors.PaymentProvider(err)
	}
	return secret, nil
}

// MinorUnits multiplies amount by 100 and truncates. A product within 1e-6 of
// a whole cent snaps to it, so 19.99 gives 1999 rather than 1998; real
// fractions of a cent are still dropped (19.999 gives 1999).
func MinorUnits(amount float64) int64 {
	const tolerance = 1e-6
	cents := amount * 100
	if r := math.Round(cents); math.Abs(cents-r) < tolerance {
		return int64(r)
	}
	return int64(math.Trunc(cents))
}
