package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/api/handler"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
	"github.com/qs3c/brand_go_server/internal/pkg/ws"
)

type allowAll struct{}

func (allowAll) HasFeature(brandID, role, feature string) (bool, error) { return true, nil }

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT:  config.JWTConfig{Secret: "router-secret", ExpireHours: 1},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		},
	}

	r := NewRouter(
		handler.NewAuthHandler(nil),
		handler.NewPlanHandler(nil),
		handler.NewBrandHandler(nil),
		handler.NewOfferHandler(nil),
		handler.NewUploadHandler(nil, cfg),
		handler.NewBillingHandler(nil, nil),
		handler.NewWebSocketHandler(ws.NewHub(nil), cfg.JWT.Secret, nil, nil),
		allowAll{},
		cfg,
		nil,
	)
	return r.Setup()
}

func TestRouter_Routes(t *testing.T) {
	engine := setupRouter(t)

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /api/v1/ws",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/profile",
		"GET /api/v1/plans",
		"GET /api/v1/plans/:id",
		"GET /api/v1/plans/subscriptions/:brandId",
		"POST /api/v1/stripe/create-checkout-session",
		"POST /api/v1/stripe/webhook",
		"GET /api/v1/stripe/verify-session/:sessionId",
		"GET /api/v1/stripe/invoices",
		"GET /api/v1/brands/:id",
		"GET /api/v1/brands/subdomain/:subdomain",
		"PUT /api/v1/brands/:id/config",
		"PUT /api/v1/brands/:id/app-config",
		"GET /api/v1/brands/:id/app-config.json",
		"POST /api/v1/offers",
		"GET /api/v1/offers",
		"GET /api/v1/offers/:id",
		"PATCH /api/v1/offers/:id",
		"DELETE /api/v1/offers/:id",
		"POST /api/v1/upload/logo",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	engine := setupRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/offers"},
		{http.MethodPost, "/api/v1/offers"},
		{http.MethodGet, "/api/v1/brands/brand-1"},
		{http.MethodGet, "/api/v1/stripe/invoices"},
		{http.MethodGet, "/api/v1/auth/profile"},
		{http.MethodPost, "/api/v1/upload/logo"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			engine.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var resp response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, response.CodeAuthFailed, resp.Code)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	engine := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/plans", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
