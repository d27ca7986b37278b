package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindInvalidIdentifier.Status())
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusServiceUnavailable, KindStoreUnavailable.Status())
	assert.Equal(t, http.StatusBadGateway, KindPaymentProvider.Status())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.Status())
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("accept meeting: %w", InvalidIdentifier("zz", nil))
	assert.Equal(t, KindInvalidIdentifier, KindOf(err))
	assert.True(t, Is(err, KindInvalidIdentifier))
	assert.False(t, Is(nil, KindInternal))
	assert.Equal(t, KindInternal, KindOf(stderrors.New("boom")))
}

func TestFromStore(t *testing.T) {
	assert.Nil(t, FromStore(nil))
	assert.Equal(t, KindStoreUnavailable, KindOf(FromStore(mongo.ErrClientDisconnected)))
	assert.Equal(t, KindStoreUnavailable, KindOf(FromStore(fmt.Errorf("find: %w", context.DeadlineExceeded))))
	assert.Equal(t, KindInternal, KindOf(FromStore(stderrors.New("decode failure"))))
	assert.Equal(t, KindCanceled, KindOf(FromStore(fmt.Errorf("find: %w", context.Canceled))))
	assert.Equal(t, StatusClientClosedRequest, KindCanceled.Status())

	conflict := Conflict("taken", nil)
	assert.Same(t, conflict, FromStore(conflict))
}

func TestErrorMessage(t *testing.T) {
	err := PaymentProvider(stderrors.New("card declined"))
	assert.Equal(t, "payment provider error: card declined", err.Error())
	assert.Equal(t, "users not found", NotFound("users", nil).Error())
}
