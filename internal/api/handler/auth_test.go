package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
	"github.com/qs3c/brand_go_server/internal/repository"
	"github.com/qs3c/brand_go_server/internal/service"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()

	env := setupEnv(t)
	authService := service.NewAuthService(repository.NewUserRepository(env.db), env.brandRepo, nil, env.cfg, nil)
	handler := NewAuthHandler(authService)

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)
	router.GET("/profile", env.authed(), handler.Profile)
	return router
}

func registerBody(company, email string) dto.RegisterRequest {
	return dto.RegisterRequest{
		CompanyName: company,
		Email:       email,
		Password:    "password123",
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	router := setupAuthRouter(t)

	w := performRequest(router, "POST", "/register", registerBody("Acme", "owner@acme.com"))
	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var auth dto.AuthResponse
	decodeData(t, resp, &auth)
	assert.NotEmpty(t, auth.AccessToken)
	assert.Equal(t, "owner@acme.com", auth.User.Email)
	require.NotNil(t, auth.User.Brand)
	assert.Equal(t, "Acme", auth.User.Brand.CompanyName)
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	router := setupAuthRouter(t)

	w := performRequest(router, "POST", "/register", registerBody("Acme", "owner@acme.com"))
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/register", registerBody("Other", "owner@acme.com"))
	assert.Equal(t, response.CodeDuplicateAction, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/register", registerBody("Acme", "second@acme.com"))
	assert.Equal(t, response.CodeDuplicateAction, parseResponse(t, w).Code)
}

func TestAuthHandler_Register_InvalidParams(t *testing.T) {
	router := setupAuthRouter(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing company", dto.RegisterRequest{Email: "a@example.com", Password: "password123"}},
		{"bad email", registerBody("Acme", "not-an-email")},
		{"short password", dto.RegisterRequest{CompanyName: "Acme", Email: "a@example.com", Password: "123"}},
		{"empty body", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "POST", "/register", tt.body)
			assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
		})
	}
}

func TestAuthHandler_LoginAndProfile(t *testing.T) {
	router := setupAuthRouter(t)

	w := performRequest(router, "POST", "/register", registerBody("Acme", "owner@acme.com"))
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{Email: "owner@acme.com", Password: "wrong"})
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{Email: "owner@acme.com", Password: "password123"})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var auth dto.AuthResponse
	decodeData(t, resp, &auth)

	w = performAuthedRequest(router, "GET", "/profile", nil, auth.AccessToken)
	resp = parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var profile dto.UserInfo
	decodeData(t, resp, &profile)
	assert.Equal(t, auth.User.ID, profile.ID)
}

func TestAuthHandler_Profile_Unauthorized(t *testing.T) {
	router := setupAuthRouter(t)

	w := performRequest(router, "GET", "/profile", nil)
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}
