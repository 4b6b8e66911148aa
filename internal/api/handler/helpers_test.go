package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/api/middleware"
	"github.com/qs3c/brand_go_server/internal/pkg/jwt"
	"github.com/qs3c/brand_go_server/internal/pkg/payment"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
	"github.com/qs3c/brand_go_server/internal/repository"
	"github.com/qs3c/brand_go_server/internal/service"
	"github.com/qs3c/brand_go_server/internal/testutil"
)

const testJWTSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGateway 按字段返回固定结果
type fakeGateway struct {
	session  *payment.CheckoutSession
	remote   *payment.Subscription
	event    payment.Event
	invoices []payment.Invoice
	err      error
	parseErr error
}

func (g *fakeGateway) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	return "cus_test", g.err
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req *payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &payment.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.com/cs_test", Metadata: req.Metadata}, nil
}

func (g *fakeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.session == nil {
		return nil, errors.New("no such checkout session")
	}
	return g.session, nil
}

func (g *fakeGateway) RetrieveSubscription(ctx context.Context, ref string) (*payment.Subscription, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.remote == nil {
		return nil, errors.New("no such subscription")
	}
	return g.remote, nil
}

func (g *fakeGateway) ListInvoices(ctx context.Context, customerID string, limit int64) ([]payment.Invoice, error) {
	return g.invoices, g.err
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (payment.Event, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

type testEnv struct {
	db      *gorm.DB
	cfg     *config.Config
	gateway *fakeGateway

	brandRepo *repository.BrandRepository
	planRepo  *repository.PlanRepository
	subRepo   *repository.SubscriptionRepository
	offerRepo *repository.OfferRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return &testEnv{
		db: db,
		cfg: &config.Config{
			JWT:    config.JWTConfig{Secret: testJWTSecret, ExpireHours: 24},
			Stripe: config.StripeConfig{FrontendURL: "http://localhost:3000", Currency: "eur"},
			Upload: config.UploadConfig{MaxSize: 1024, AllowedExtensions: []string{".png", ".jpg"}},
		},
		gateway:   &fakeGateway{},
		brandRepo: repository.NewBrandRepository(db),
		planRepo:  repository.NewPlanRepository(db),
		subRepo:   repository.NewSubscriptionRepository(db),
		offerRepo: repository.NewOfferRepository(db),
	}
}

func (e *testEnv) billingService() *service.BillingService {
	return service.NewBillingService(e.brandRepo, e.planRepo, e.subRepo, e.gateway, e.cfg, nil)
}

func (e *testEnv) brandService() *service.BrandService {
	return service.NewBrandService(e.brandRepo, e.subRepo)
}

func (e *testEnv) authed() gin.HandlerFunc {
	return middleware.Auth(testJWTSecret)
}

func tokenFor(t *testing.T, userID, brandID string) string {
	t.Helper()

	token, err := jwt.GenerateToken(userID, brandID, testJWTSecret, 24)
	require.NoError(t, err)
	return token
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	return performAuthedRequest(r, method, path, body, "")
}

func performAuthedRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// decodeData 将响应 data 解析到 v
func decodeData(t *testing.T, resp response.Response, v interface{}) {
	t.Helper()

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}
