package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/harentsoaR/meetdoc-api/internal/errors"
	"github.com/harentsoaR/meetdoc-api/internal/middleware"
	"github.com/harentsoaR/meetdoc-api/internal/services"
	"github.com/harentsoaR/meetdoc-api/internal/store"
	"github.com/harentsoaR/meetdoc-api/internal/utils"
)

// Handler carries the services every route handler calls into.
type Handler struct {
	Identity *services.IdentityService
	Meetings *services.MeetingService
	Payments *services.PaymentService
	Feedback *services.FeedbackService
	Tokens   *utils.TokenIssuer
	Store    store.Pinger

	// IntentLimiter throttles payment intent creation; nil lets every request through.
	IntentLimiter *middleware.RateLimiter
}

func NewHandler(
	identity *services.IdentityService,
	meetings *services.MeetingService,
	payments *services.PaymentService,
	feedback *services.FeedbackService,
	tokens *utils.TokenIssuer,
	pinger store.Pinger,
) *Handler {
	return &Handler{
		Identity: identity,
		Meetings: meetings,
		Payments: payments,
		Feedback: feedback,
		Tokens:   tokens,
		Store:    pinger,
	}
}

// respondError logs err and writes {"error": message} with the status of its kind.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := kind.Status()

	message := "internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	logger := middleware.Log(c)
	var event *zerolog.Event
	switch {
	case kind == apperrors.KindCanceled:
		event = logger.Debug()
	case status >= http.StatusInternalServerError:
		event = logger.Error()
	default:
		event = logger.Warn()
	}
	event.Err(err).
		Str("kind", kind.String()).
		Str("route", c.FullPath()).
		Msg("request failed")

	c.JSON(status, gin.H{"error": message})
}

// respondFound writes doc, or null when the lookup found nothing.
func respondFound[T any](c *gin.Context, doc *T, err error) {
	if apperrors.Is(err, apperrors.KindNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func respond(c *gin.Context, body any, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func respondRegistration(c *gin.Context, reg services.Registration, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if !reg.Created {
		c.JSON(http.StatusOK, gin.H{"message": "user already exists", "insertedId": nil})
		return
	}
	respondInserted(c, reg.InsertedID, nil)
}

func respondInserted(c *gin.Context, id primitive.ObjectID, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store.InsertResult{Acknowledged: true, InsertedID: &id})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.BadRequest("Invalid request body", err))
		return false
	}
	return true
}
