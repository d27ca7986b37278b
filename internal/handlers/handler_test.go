package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/harentsoaR/meetdoc-api/internal/errors"
	"github.com/harentsoaR/meetdoc-api/internal/middleware"
	"github.com/harentsoaR/meetdoc-api/internal/models"
	"github.com/harentsoaR/meetdoc-api/internal/services"
	"github.com/harentsoaR/meetdoc-api/internal/store"
	"github.com/harentsoaR/meetdoc-api/internal/utils"
)

type fakeIntents struct {
	amount   int64
	currency string
	err      error
}

func (f *fakeIntents) CreateIntent(_ context.Context, amount int64, currency string) (string, error) {
	f.amount, f.currency = amount, currency
	if f.err != nil {
		return "", f.err
	}
	return "pi_test_secret", nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("no reachable servers") }

type testServer struct {
	router  *gin.Engine
	intents *fakeIntents
	tokens  *utils.TokenIssuer
}

func newTestServer(t *testing.T, pinger store.Pinger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cols := store.NewMemoryCollections()
	intents := &fakeIntents{}
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)

	h := NewHandler(
		services.NewIdentityService(cols.Users, cols.Doctors),
		services.NewMeetingService(cols.Meetings, false),
		services.NewPaymentService(cols.Payments, intents),
		services.NewFeedbackService(cols.Feedback),
		tokens,
		pinger,
	)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Identify(tokens))
	h.RegisterRoutes(r)
	return &testServer{router: r, intents: intents, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func insertedID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	id, ok := body["insertedId"].(string)
	require.True(t, ok, "insertedId missing in %s", w.Body.String())
	return id
}

func TestSetMeetingThenGetMeeting(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	w := s.do(t, http.MethodPost, "/setMeeting", gin.H{"email": "a@x.com", "doc_email": "d@x.com"})
	insertedID(t, w)

	w = s.do(t, http.MethodGet, "/getMeeting/a@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	meetings := decode[[]map[string]any](t, w)
	require.Len(t, meetings, 1)
	assert.Equal(t, "a@x.com", meetings[0]["email"])
	assert.Equal(t, "d@x.com", meetings[0]["doc_email"])
	assert.NotContains(t, meetings[0], "status")
	assert.NotContains(t, meetings[0], "payment")
}

func TestMeetingLifecycleRoutes(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	id := insertedID(t, s.do(t, http.MethodPost, "/setMeeting", gin.H{"email": "a@x.com", "doc_email": "d@x.com", "slot": "10:00"}))

	w := s.do(t, http.MethodPatch, "/acceptPayment/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["modifiedCount"])

	w = s.do(t, http.MethodPatch, "/acceptRequest/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/meetings/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[map[string]any](t, w)
	assert.Equal(t, "accepted", m["status"])
	assert.Equal(t, "done", m["payment"])
	assert.Equal(t, "10:00", m["slot"])

	w = s.do(t, http.MethodGet, "/getDocMeeting/d@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}

func TestMalformedIdentifierIsRejected(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	for _, path := range []string{"/meetings/not-an-id", "/acceptRequest/zzz", "/users/admin/123"} {
		method := http.MethodGet
		if path != "/meetings/not-an-id" {
			method = http.MethodPatch
		}
		w := s.do(t, method, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, decode[map[string]any](t, w), "error")
	}

	w := s.do(t, http.MethodDelete, "/meetings/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMissingMeetingIsZeroEffect(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	w := s.do(t, http.MethodDelete, "/meetings/665f1c2e8b3a4d0012345678", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["deletedCount"])
}

func TestMissingLookupRendersNull(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	for _, path := range []string{"/users/ghost@x.com", "/doctor/ghost@x.com", "/meetings/665f1c2e8b3a4d0012345678"} {
		w := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "null", w.Body.String(), path)
	}

	w := s.do(t, http.MethodGet, "/getMeeting/ghost@x.com", nil)
	assert.Equal(t, "[]", w.Body.String())
}

func TestDuplicateRegistration(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	insertedID(t, s.do(t, http.MethodPost, "/users", gin.H{"email": "a@x.com", "name": "Ann"}))

	w := s.do(t, http.MethodPost, "/users", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "user already exists", body["message"])
	assert.Nil(t, body["insertedId"])

	// a plain user cannot also register as a doctor
	w = s.do(t, http.MethodPost, "/doctors", gin.H{"email": "a@x.com", "category": "dental"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user already exists", decode[map[string]any](t, w)["message"])

	w = s.do(t, http.MethodGet, "/users", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}

func TestRolesAndPromotion(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	userID := insertedID(t, s.do(t, http.MethodPost, "/users", gin.H{"email": "a@x.com", "role": "admin"}))

	w := s.do(t, http.MethodGet, "/users/admin/a@x.com", nil)
	assert.Equal(t, false, decode[map[string]any](t, w)["admin"])

	w = s.do(t, http.MethodPatch, "/users/admin/"+userID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/users/admin/a@x.com", nil)
	assert.Equal(t, true, decode[map[string]any](t, w)["admin"])

	w = s.do(t, http.MethodGet, "/users/doctor/ghost@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["doctor"])

	docID := insertedID(t, s.do(t, http.MethodPost, "/doctors", gin.H{"email": "d@x.com", "category": "dental", "fee": 40}))
	s.do(t, http.MethodPatch, "/users/doctor/"+docID, nil)

	w = s.do(t, http.MethodGet, "/users/doctor/d@x.com", nil)
	assert.Equal(t, true, decode[map[string]any](t, w)["doctor"])

	w = s.do(t, http.MethodGet, "/doctors/dental", nil)
	doctors := decode[[]map[string]any](t, w)
	require.Len(t, doctors, 1)
	assert.EqualValues(t, 40, doctors[0]["fee"])
}

func TestProfileUpdates(t *testing.T) {
	s := newTestServer(t, store.NopPinger())
	insertedID(t, s.do(t, http.MethodPost, "/users", gin.H{"email": "a@x.com"}))
	insertedID(t, s.do(t, http.MethodPost, "/doctors", gin.H{"email": "d@x.com"}))

	w := s.do(t, http.MethodPatch, "/updateUser", gin.H{"email": "a@x.com", "bio": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["matchedCount"])

	w = s.do(t, http.MethodGet, "/users/a@x.com", nil)
	assert.Equal(t, "hello", decode[map[string]any](t, w)["bio"])

	w = s.do(t, http.MethodPatch, "/updateDoctor", gin.H{"email": "d@x.com", "fee": 55.5, "institute": "City"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/doctor/d@x.com", nil)
	doc := decode[map[string]any](t, w)
	assert.Equal(t, "City", doc["institute"])
	assert.EqualValues(t, 55.5, doc["fee"])

	w = s.do(t, http.MethodPatch, "/updateUser", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No update fields provided", decode[map[string]any](t, w)["error"])

	w = s.do(t, http.MethodPatch, "/updateDoctor", gin.H{"fee": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePaymentIntent(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	w := s.do(t, http.MethodPost, "/create-payment-intent", gin.H{"price": 19.99})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pi_test_secret", decode[map[string]any](t, w)["clientSecret"])
	assert.EqualValues(t, 1999, s.intents.amount)
	assert.Equal(t, services.DefaultCurrency, s.intents.currency)

	w = s.do(t, http.MethodPost, "/create-payment-intent", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.intents.err = errors.New("card_declined")
	w = s.do(t, http.MethodPost, "/create-payment-intent", gin.H{"price": 5, "currency": "eur"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode[map[string]any](t, w), "error")
}

func TestPaymentsAndFeedback(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	insertedID(t, s.do(t, http.MethodPost, "/stripePay", gin.H{"email": "a@x.com", "transactionId": "pi_1", "price": 20}))
	insertedID(t, s.do(t, http.MethodPost, "/stripePay", gin.H{"email": "b@x.com"}))

	w := s.do(t, http.MethodGet, "/payments/a@x.com", nil)
	payments := decode[[]map[string]any](t, w)
	require.Len(t, payments, 1)
	assert.Equal(t, "pi_1", payments[0]["transactionId"])

	insertedID(t, s.do(t, http.MethodPost, "/feedback", gin.H{"rating": 5, "comment": "great"}))
	w = s.do(t, http.MethodGet, "/feedback", nil)
	feedback := decode[[]map[string]any](t, w)
	require.Len(t, feedback, 1)
	assert.Equal(t, "great", feedback[0]["comment"])
}

func TestIssueTokenCarriesRole(t *testing.T) {
	s := newTestServer(t, store.NopPinger())
	userID := insertedID(t, s.do(t, http.MethodPost, "/users", gin.H{"email": "a@x.com"}))
	s.do(t, http.MethodPatch, "/users/admin/"+userID, nil)

	w := s.do(t, http.MethodPost, "/jwt", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode[map[string]any](t, w)["token"].(string)
	require.NotEmpty(t, token)

	claims, err := s.tokens.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)

	w = s.do(t, http.MethodPost, "/jwt", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	w := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "server is running", w.Body.String())

	w = s.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestServer(t, failingPinger{})
	w = down.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = down.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPaymentIntentRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cols := store.NewMemoryCollections()
	h := NewHandler(
		services.NewIdentityService(cols.Users, cols.Doctors),
		services.NewMeetingService(cols.Meetings, false),
		services.NewPaymentService(cols.Payments, &fakeIntents{}),
		services.NewFeedbackService(cols.Feedback),
		utils.NewTokenIssuer("s", time.Hour),
		store.NopPinger(),
	)
	h.IntentLimiter = middleware.NewRateLimiter(0.001, 1)
	r := gin.New()
	h.RegisterRoutes(r)
	s := &testServer{router: r}

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/create-payment-intent", gin.H{"price": 1}).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/create-payment-intent", gin.H{"price": 1}).Code)
	// other routes are not throttled
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/feedback", nil).Code)
}

func TestDoctorFeeStoredAsSent(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	insertedID(t, s.do(t, http.MethodPost, "/doctors", gin.H{"email": "d@x.com", "category": "dental", "fee": "40"}))
	insertedID(t, s.do(t, http.MethodPost, "/doctors", gin.H{"email": "e@x.com", "category": "dental", "fee": 35.5}))

	w := s.do(t, http.MethodGet, "/doctor/d@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "40", decode[map[string]any](t, w)["fee"])

	w = s.do(t, http.MethodGet, "/doctors/dental", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fees := map[string]any{}
	for _, d := range decode[[]map[string]any](t, w) {
		fees[d["email"].(string)] = d["fee"]
	}
	assert.Equal(t, map[string]any{"d@x.com": "40", "e@x.com": 35.5}, fees)

	w = s.do(t, http.MethodPatch, "/updateDoctor", gin.H{"email": "e@x.com", "fee": "free"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/doctors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)
}

// unreachable fails every operation the way a lost MongoDB connection does.
type unreachable[T any] struct{ name string }

func (u unreachable[T]) err() error {
	return apperrors.StoreUnavailable(errors.New("server selection error: context deadline exceeded"))
}

func (u unreachable[T]) Name() string { return u.name }
func (u unreachable[T]) Find(context.Context, bson.M) ([]T, error) {
	return nil, u.err()
}
func (u unreachable[T]) FindOne(context.Context, bson.M) (*T, error) {
	return nil, u.err()
}
func (u unreachable[T]) InsertOne(context.Context, *T) (primitive.ObjectID, error) {
	return primitive.NilObjectID, u.err()
}
func (u unreachable[T]) UpdateOne(context.Context, bson.M, bson.M) (store.UpdateResult, error) {
	return store.UpdateResult{}, u.err()
}
func (u unreachable[T]) DeleteOne(context.Context, bson.M) (store.DeleteResult, error) {
	return store.DeleteResult{}, u.err()
}

func TestStoreUnavailableIsNotSwallowed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(
		services.NewIdentityService(unreachable[models.User]{store.UsersCollection}, unreachable[models.Doctor]{store.DoctorsCollection}),
		services.NewMeetingService(unreachable[models.Meeting]{store.MeetingsCollection}, false),
		services.NewPaymentService(unreachable[models.Payment]{store.PaymentsCollection}, &fakeIntents{}),
		services.NewFeedbackService(unreachable[models.Feedback]{store.FeedbackCollection}),
		utils.NewTokenIssuer("s", time.Hour),
		store.NopPinger(),
	)
	r := gin.New()
	h.RegisterRoutes(r)
	s := &testServer{router: r}

	for _, path := range []string{
		"/users/admin/a@x.com",
		"/users/doctor/a@x.com",
		"/users/a@x.com",
		"/doctor/d@x.com",
		"/getMeeting/a@x.com",
		"/meetings/665f1c2e8b3a4d0012345678",
		"/payments/a@x.com",
	} {
		w := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.JSONEq(t, `{"error":"store unavailable"}`, w.Body.String(), path)
	}

	w := s.do(t, http.MethodPost, "/users", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = s.do(t, http.MethodPost, "/jwt", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPaymentIntentPriceOutOfRange(t *testing.T) {
	s := newTestServer(t, store.NopPinger())

	w := s.do(t, http.MethodPost, "/create-payment-intent", gin.H{"price": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "price out of range", decode[map[string]any](t, w)["error"])
	assert.Zero(t, s.intents.amount)
}
