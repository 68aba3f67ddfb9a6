package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	"github.com/BruksfildServices01/micro8gents-api/internal/config"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/billing"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/objectstore"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/telephony"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/voice"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/workflow"
	"github.com/BruksfildServices01/micro8gents-api/internal/session"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage/memory"
)

const (
	stripeSecret = "whsec_test"
	twilioToken  = "twilio-token"
	n8nSecret    = "n8n-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
	httperr.UseJSONFieldNames()
}

// --------- Fixture ---------

type fakeMailer struct {
	mu   sync.Mutex
	to   string
	link string
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to, m.link = to, resetURL
	return nil
}

type testApp struct {
	r      *gin.Engine
	store  *memory.Store
	mailer *fakeMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		ClientURL:           "http://localhost:5173",
		JWTSecret:           "test-secret",
		SessionTTL:          time.Hour,
		AuthRatePerSecond:   1000,
		AuthRateBurst:       1000,
		DefaultTimezone:     "UTC",
		RecordingURLTTL:     15 * time.Minute,
		StripeWebhookSecret: stripeSecret,
		TwilioAuthToken:     twilioToken,
		N8nWebhookSecret:    n8nSecret,
	}
	log := zap.NewNop()

	app := &testApp{
		r:      gin.New(),
		store:  memory.New(),
		mailer: &fakeMailer{},
	}

	RegisterRoutes(app.r, Deps{
		Config:      cfg,
		Store:       app.store,
		Log:         log,
		Sessions:    session.NewManager(cfg.JWTSecret, cfg.SessionTTL),
		Revocations: session.NewMemoryRevocations(),
		Billing:     billing.New("", cfg.StripeWebhookSecret, log),
		Mailer:      app.mailer,
		Telephony:   telephony.New(telephony.Options{AuthToken: twilioToken}, log),
		Voice:       voice.New("", "", nil, log),
		Workflows:   workflow.New("", "", nil, log),
		Objects:     objectstore.New(objectstore.Options{}),
		Audit:       audit.Discard{},
	})
	return app
}

func (a *testApp) request(method, path string, body any, sess *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		req.AddCookie(sess)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, username string) *http.Cookie {
	t.Helper()
	w := a.request(http.MethodPost, "/api/auth/register", gin.H{
		"username":     username,
		"password":     "secret123",
		"email":        username + "@example.com",
		"businessName": strings.ToUpper(username[:1]) + username[1:] + " Plumbing",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return sessionCookie(t, w)
}

func (a *testApp) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := a.store.GetUserByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[httperr.HTTPError](t, w).Code
}

// --------- Account ---------

func TestRegisterCreatesBusinessAndFreeSubscription(t *testing.T) {
	app := newTestApp(t)

	w := app.request(http.MethodPost, "/api/auth/register", gin.H{
		"username":     "alice",
		"password":     "secret123",
		"email":        "Alice@Example.com",
		"businessName": "Alice Plumbing",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	user := decode[models.User](t, w)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)

	w = app.request(http.MethodGet, "/api/subscriptions/current", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	sub := decode[models.Subscription](t, w)
	assert.Equal(t, "free", sub.Plan)
	assert.Equal(t, "active", sub.Status)
	require.NotNil(t, sub.CurrentPeriodEnd)

	w = app.request(http.MethodGet, "/api/business/info", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	b := decode[models.Business](t, w)
	assert.Equal(t, "Alice Plumbing", b.BusinessName)
	assert.Equal(t, "alice@example.com", b.Email)

	w = app.request(http.MethodPost, "/api/subscriptions", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "subscription_exists", errorCode(t, w))
}

func TestRegisterRejectsTakenUsernameAndBadBody(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	w := app.request(http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice",
		"password": "secret123",
		"email":    "other@example.com",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username_taken", errorCode(t, w))

	w = app.request(http.MethodPost, "/api/auth/register", gin.H{
		"username": "bob",
		"password": "123",
		"email":    "not-an-email",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[httperr.HTTPError](t, w)
	assert.Equal(t, "validation_error", body.Code)

	fields := map[string]string{}
	for _, fe := range body.Errors {
		fields[fe.Field] = fe.Rule
	}
	assert.Equal(t, "min", fields["password"])
	assert.Equal(t, "email", fields["email"])
}

func TestLoginAndMe(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	w := app.request(http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, w))

	w = app.request(http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)

	w = app.request(http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode[models.User](t, w).Username)

	w = app.request(http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")

	w := app.request(http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)

	w = app.request(http.MethodGet, "/api/auth/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_session", errorCode(t, w))
}

func TestForgotAndResetPassword(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	w := app.request(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "nobody@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, app.mailer.link)

	w = app.request(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "alice@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, app.mailer.link)
	assert.Equal(t, "alice@example.com", app.mailer.to)
	assert.True(t, strings.HasPrefix(app.mailer.link, "http://localhost:5173/auth/reset-password?"))

	link, err := url.Parse(app.mailer.link)
	require.NoError(t, err)
	token := link.Query().Get("token")
	assert.Len(t, token, 64)

	w = app.request(http.MethodPost, "/api/auth/reset-password", gin.H{
		"email": "alice@example.com", "token": strings.Repeat("0", 64), "password": "newsecret",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_reset_token", errorCode(t, w))

	w = app.request(http.MethodPost, "/api/auth/reset-password", gin.H{
		"email": "alice@example.com", "token": token, "password": "newsecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.request(http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = app.request(http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "newsecret"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// The token is single use.
	w = app.request(http.MethodPost, "/api/auth/reset-password", gin.H{
		"email": "alice@example.com", "token": token, "password": "another1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --------- Business ---------

func TestBusinessInfoRoundTrip(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")

	w := app.request(http.MethodPut, "/api/business/info", gin.H{
		"businessType": "dental_clinic",
		"description":  "Family dentistry downtown",
		"phone":        "(555) 123-4567",
		"website":      "https://alice.example.com",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(http.MethodGet, "/api/business/info", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	b := decode[models.Business](t, w)
	assert.Equal(t, "Alice Plumbing", b.BusinessName)
	assert.Equal(t, "dental_clinic", b.BusinessType)
	assert.Equal(t, "Family dentistry downtown", b.Description)
	assert.Equal(t, "(555) 123-4567", b.Phone)

	w = app.request(http.MethodPut, "/api/business/info", gin.H{"businessType": "castle"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_business_type", errorCode(t, w))

	w = app.request(http.MethodPut, "/api/business/info", gin.H{"website": "not a url"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorCode(t, w))
}

func fullWeek() gin.H {
	week := gin.H{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		week[day] = gin.H{"open": "08:00", "close": "18:00", "isOpen": true}
	}
	week["saturday"] = gin.H{"open": "10:00", "close": "14:00", "isOpen": true}
	week["sunday"] = gin.H{"open": "10:00", "close": "14:00", "isOpen": false}
	return week
}

func TestHoursAlwaysSevenRows(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")
	ctx := context.Background()

	w := app.request(http.MethodGet, "/api/business/hours", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	defaults := decode[map[string]map[string]any](t, w)
	require.Len(t, defaults, 7)
	assert.Equal(t, "09:00", defaults["monday"]["open"])
	assert.Equal(t, false, defaults["sunday"]["isOpen"])

	for i := 0; i < 2; i++ {
		w = app.request(http.MethodPut, "/api/business/hours", fullWeek(), cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	b, err := app.store.GetBusinessByUserID(ctx, app.user(t, "alice").ID)
	require.NoError(t, err)
	rows, err := app.store.ListHours(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 7)

	week := decode[map[string]map[string]any](t, w)
	assert.Equal(t, "08:00", week["monday"]["open"])
	assert.Equal(t, true, week["saturday"]["isOpen"])

	partial := fullWeek()
	delete(partial, "friday")
	w = app.request(http.MethodPut, "/api/business/hours", partial, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	rows, err = app.store.ListHours(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 7)

	w = app.request(http.MethodGet, "/api/business/setup/status", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[map[string]any](t, w)
	assert.Equal(t, true, status["hasHoursSetup"])
}

func TestFAQsReplaced(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")

	w := app.request(http.MethodPut, "/api/business/faqs", gin.H{"faqs": []gin.H{
		{"question": "Do you take walk-ins?", "answer": "Yes, until 4pm."},
		{"question": "Is parking free?", "answer": "Yes, behind the shop."},
	}}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(http.MethodPut, "/api/business/faqs", gin.H{"faqs": []gin.H{
		{"question": "Do you open on holidays?", "answer": "Only on Boxing Day."},
	}}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.request(http.MethodGet, "/api/business/faqs", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	faqs := decode[[]models.FAQ](t, w)
	require.Len(t, faqs, 1)
	assert.Equal(t, "Do you open on holidays?", faqs[0].Question)

	w = app.request(http.MethodPut, "/api/business/faqs", gin.H{"faqs": []gin.H{
		{"question": "Hi?", "answer": "Yes"},
	}}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --------- Bookings / integrations ---------

func TestBookingOwnership(t *testing.T) {
	app := newTestApp(t)
	alice := app.register(t, "alice")
	bob := app.register(t, "bob")

	w := app.request(http.MethodPost, "/api/bookings", gin.H{
		"customer": "Carol",
		"service":  "Leak repair",
		"date":     "2026-03-01T15:00:00Z",
	}, alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bk := decode[models.Booking](t, w)
	assert.Equal(t, "upcoming", bk.Status)

	path := fmt.Sprintf("/api/bookings/%d", bk.ID)

	w = app.request(http.MethodGet, path, nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "booking_not_found", errorCode(t, w))

	w = app.request(http.MethodPut, path, gin.H{"status": "completed"}, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.request(http.MethodDelete, path, nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	kept, err := app.store.GetBooking(context.Background(), bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "upcoming", kept.Status)

	w = app.request(http.MethodPut, path, gin.H{"status": "teleported"}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_booking_status", errorCode(t, w))

	w = app.request(http.MethodPut, path, gin.H{"status": "completed"}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode[models.Booking](t, w).Status)

	w = app.request(http.MethodGet, "/api/bookings/abc", nil, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_id", errorCode(t, w))

	w = app.request(http.MethodDelete, path, nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.request(http.MethodGet, path, nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateIntegration(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")

	body := gin.H{"type": "n8n", "config": gin.H{"webhookUrl": "https://n8n.example.com/hook"}}

	w := app.request(http.MethodPost, "/api/integrations", body, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Integration](t, w)
	assert.Equal(t, "inactive", created.Status)

	w = app.request(http.MethodPost, "/api/integrations", body, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "integration_exists", errorCode(t, w))

	w = app.request(http.MethodPost, "/api/integrations", gin.H{"type": "stripe", "config": gin.H{}}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	cfgErr := decode[httperr.HTTPError](t, w)
	assert.Equal(t, "invalid_integration_config", cfgErr.Code)
	require.Len(t, cfgErr.Errors, 1)
	assert.Equal(t, "config.apiKey", cfgErr.Errors[0].Field)
	assert.Equal(t, "required", cfgErr.Errors[0].Rule)

	w = app.request(http.MethodGet, "/api/integrations", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	views := decode[[]map[string]any](t, w)
	require.Len(t, views, 1)
	assert.Equal(t, "n8n", views[0]["type"])
	assert.NotContains(t, views[0], "config")

	w = app.request(http.MethodPut, fmt.Sprintf("/api/integrations/%d", created.ID), gin.H{
		"config": gin.H{"webhookUrl": "ftp://nope"},
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --------- Subscriptions ---------

func TestCancelTwice(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")

	for i := 0; i < 2; i++ {
		w := app.request(http.MethodPost, "/api/subscriptions/cancel", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		sub := decode[models.Subscription](t, w)
		assert.Equal(t, "canceled", sub.Status)
		assert.False(t, sub.CancelAtPeriodEnd)
	}
}

func TestBillingPortalWithoutCustomer(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")

	w := app.request(http.MethodPost, "/api/subscriptions/billing-portal", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no_billing_customer", errorCode(t, w))

	w = app.request(http.MethodPost, "/api/subscriptions/checkout", gin.H{"plan": "gold", "billingCycle": "monthly"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func signedStripe(payload string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    stripeSecret,
		Timestamp: time.Now(),
	}).Header
}

func TestStripeWebhook(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")
	userID := app.user(t, "alice").ID

	payload := fmt.Sprintf(`{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_1",
    "object": "checkout.session",
    "client_reference_id": "%d",
    "customer": "cus_1",
    "subscription": "sub_1",
    "metadata": {"plan": "premium", "userId": "%d"}
  }}
}`, userID, userID)

	post := func(sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(payload))
		if sig != "" {
			req.Header.Set("Stripe-Signature", sig)
		}
		w := httptest.NewRecorder()
		app.r.ServeHTTP(w, req)
		return w
	}

	w := post("")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_signature", errorCode(t, w))

	w = post("t=1,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_signature", errorCode(t, w))

	w = post(signedStripe(payload))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(http.MethodGet, "/api/subscriptions/current", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	sub := decode[models.Subscription](t, w)
	assert.Equal(t, "premium", sub.Plan)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, "cus_1", sub.StripeCustomerID)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionID)
}

// --------- Webhooks: calls ---------

func twilioRequest(path string, form url.Values, signed bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signed {
		req.Header.Set("X-Twilio-Signature", telephony.Signature(twilioToken, "http://example.com"+path, form))
	}
	return req
}

func TestTwilioAndN8nWebhooks(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")

	w := app.request(http.MethodPut, "/api/business/info", gin.H{"phone": "(555) 123-4567"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	form := url.Values{
		"From":    {"+15125550199"},
		"To":      {"+15551234567"},
		"CallSid": {"CA123"},
	}

	w = httptest.NewRecorder()
	app.r.ServeHTTP(w, twilioRequest("/api/webhooks/twilio", form, false))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	app.r.ServeHTTP(w, twilioRequest("/api/webhooks/twilio", form, true))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/xml")
	assert.Contains(t, w.Body.String(), "Thank you for calling Alice Plumbing")
	assert.Contains(t, w.Body.String(), "<Gather")

	w = app.request(http.MethodGet, "/api/calls", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	calls := decode[[]models.Call](t, w)
	require.Len(t, calls, 1)
	assert.Equal(t, "in-progress", calls[0].Status)
	assert.Equal(t, "+15125550199", calls[0].Phone)
	callID := calls[0].ID

	// A number no business owns still gets TwiML.
	other := url.Values{"From": {"+15125550199"}, "To": {"+19999999999"}, "CallSid": {"CA124"}}
	w = httptest.NewRecorder()
	app.r.ServeHTTP(w, twilioRequest("/api/webhooks/twilio", other, true))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "technical difficulties")

	gather := url.Values{"To": {"+15551234567"}, "CallSid": {"CA123"}, "SpeechResult": {"I need a plumber"}}
	w = httptest.NewRecorder()
	app.r.ServeHTTP(w, twilioRequest("/api/webhooks/twilio/gather", gather, true))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "One moment")

	n8n := func(body any, secret string) *httptest.ResponseRecorder {
		buf, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/n8n", bytes.NewReader(buf))
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set(workflow.SecretHeader, secret)
		}
		w := httptest.NewRecorder()
		app.r.ServeHTTP(w, req)
		return w
	}

	w = n8n(gin.H{"callId": callID, "action": "update_call_type", "data": gin.H{"type": "Booking"}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = n8n(gin.H{"callId": callID, "action": "update_call_type", "data": gin.H{"type": "Booking"}}, n8nSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = n8n(gin.H{"callId": callID, "action": "dance", "data": gin.H{}}, n8nSecret)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_action", errorCode(t, w))

	w = n8n(gin.H{"callId": 999, "action": "end_call", "data": gin.H{}}, n8nSecret)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = n8n(gin.H{"callId": fmt.Sprint(callID), "action": "end_call", "data": gin.H{
		"transcript": "Caller booked a repair.",
		"recording":  "https://recordings.example.com/CA123.mp3",
	}}, n8nSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(http.MethodGet, fmt.Sprintf("/api/calls/%d", callID), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	c := decode[models.Call](t, w)
	assert.Equal(t, "completed", c.Status)
	assert.Equal(t, "Booking", c.Type)
	assert.Equal(t, "Caller booked a repair.", c.Transcript)
	assert.NotNil(t, c.EndTime)
	assert.Regexp(t, `^\d+:\d{2}$`, c.Duration)

	// Absolute recording URLs are returned as stored.
	w = app.request(http.MethodGet, fmt.Sprintf("/api/calls/%d/recording", callID), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://recordings.example.com/CA123.mp3", decode[map[string]string](t, w)["url"])

	w = app.request(http.MethodGet, "/api/dashboard/stats", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), stats["totalCalls"])
	assert.Equal(t, "$0", stats["monthlyRevenue"])
}

// --------- Admin ---------

func TestAdminAccess(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")
	app.register(t, "bob")

	w := app.request(http.MethodGet, "/api/admin/users", nil, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	role := models.RoleAdmin
	_, err := app.store.UpdateUser(context.Background(), app.user(t, "alice").ID, storage.UserPatch{Role: &role})
	require.NoError(t, err)

	w = app.request(http.MethodGet, "/api/admin/users", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]map[string]any](t, w)
	require.Len(t, users, 2)
	assert.NotNil(t, users[0]["business"])
	assert.NotNil(t, users[0]["subscription"])
	assert.NotContains(t, users[0], "password")

	w = app.request(http.MethodGet, "/api/admin/users/abc", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.request(http.MethodGet, "/api/admin/users/999", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user_not_found", errorCode(t, w))

	bobID := app.user(t, "bob").ID
	w = app.request(http.MethodGet, fmt.Sprintf("/api/admin/users/%d", bobID), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[map[string]any](t, w)
	assert.NotNil(t, detail["business"])
	assert.Empty(t, detail["bookings"])

	w = app.request(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", bobID), gin.H{"role": "root"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.request(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", bobID), gin.H{"role": "admin"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleAdmin, app.user(t, "bob").Role)

	w = app.request(http.MethodGet, "/api/admin/dashboard/stats", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w)
	assert.Equal(t, float64(2), stats["totalUsers"])
	assert.Equal(t, float64(2), stats["recentSignups"])
}

// --------- Voice / ops ---------

func TestVoiceEndpointsInMockMode(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")

	w := app.request(http.MethodGet, "/api/voice/voices", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]voice.Voice](t, w), 3)

	w = app.request(http.MethodGet, "/api/voice/voices/voice1", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.request(http.MethodGet, "/api/voice/voices/unknown", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.request(http.MethodPost, "/api/voice/preview", gin.H{"text": "Hello there"}, cookie)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "object_store_disabled", errorCode(t, w))
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w := app.request(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.request(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "micro8gents_http_requests_total")
}

func TestAuditLogsQuery(t *testing.T) {
	app := newTestApp(t)
	cookie := app.register(t, "alice")

	w := app.request(http.MethodGet, "/api/audit-logs?from=2026-03-05&to=2026-03-01", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_date_range", errorCode(t, w))

	w = app.request(http.MethodGet, "/api/audit-logs?from=yesterday", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.request(http.MethodGet, "/api/audit-logs?limit=500&from=2026-01-01&to=2026-01-31", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), page["page"])
	assert.Equal(t, float64(50), page["limit"])
	assert.Equal(t, float64(0), page["total"])
	assert.Equal(t, []any{}, page["logs"])
}

func TestRowsNeedCallerBusiness(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	u := &models.User{Username: "nobiz", Password: "hash", Email: "nobiz@example.com"}
	require.NoError(t, app.store.CreateUser(ctx, u))

	token, _, err := session.NewManager("test-secret", time.Hour).Issue(u.ID, models.RoleUser)
	require.NoError(t, err)
	cookie := &http.Cookie{Name: session.CookieName, Value: token}

	w := app.request(http.MethodPost, "/api/bookings", gin.H{
		"customer": "Carol", "service": "Leak repair", "date": "2026-03-01T15:00:00Z",
	}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "business_not_found", errorCode(t, w))

	w = app.request(http.MethodPost, "/api/calls", gin.H{"caller": "Carol"}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	count, err := app.store.CountBookings(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = app.store.CountCalls(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
