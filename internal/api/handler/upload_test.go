package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
	"github.com/qs3c/brand_go_server/internal/service"
)

type memoryLogoStore struct {
	objects map[string][]byte
}

func (s *memoryLogoStore) UploadLogo(brandID string, data []byte, ext string) (string, string, error) {
	key := "logos/" + brandID + "/logo" + ext
	s.objects[key] = data
	return key, "https://cdn.example.com/" + key, nil
}

func setupUploadRouter(t *testing.T, store service.LogoStore) *gin.Engine {
	t.Helper()

	env := setupEnv(t)
	handler := NewUploadHandler(service.NewUploadService(store, env.cfg, nil), env.cfg)

	router := gin.New()
	router.POST("/upload/logo", env.authed(), handler.UploadLogo)
	return router
}

func uploadRequest(t *testing.T, router http.Handler, field, filename string, data []byte) response.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/upload/logo", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "user-1", "brand-1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return parseResponse(t, w)
}

func TestUploadHandler_UploadLogo(t *testing.T) {
	store := &memoryLogoStore{objects: map[string][]byte{}}
	router := setupUploadRouter(t, store)

	resp := uploadRequest(t, router, "file", "brand.png", []byte("png-data"))
	require.Equal(t, response.CodeSuccess, resp.Code)

	var result dto.UploadLogoResponse
	decodeData(t, resp, &result)
	assert.Equal(t, "https://cdn.example.com/logos/brand-1/logo.png", result.URL)
	assert.Equal(t, "brand.png", result.OriginalName)
	assert.Equal(t, int64(8), result.Size)
	assert.Equal(t, []byte("png-data"), store.objects["logos/brand-1/logo.png"])
}

func TestUploadHandler_UploadLogo_Rejected(t *testing.T) {
	router := setupUploadRouter(t, &memoryLogoStore{objects: map[string][]byte{}})

	tests := []struct {
		name     string
		field    string
		filename string
		data     []byte
		wantCode int
	}{
		{"missing file", "", "", nil, response.CodeParamError},
		{"wrong field", "logo", "brand.png", []byte("x"), response.CodeParamError},
		{"bad extension", "file", "brand.svg", []byte("x"), response.CodeParamError},
		{"too large", "file", "brand.png", bytes.Repeat([]byte("a"), 2048), response.CodeParamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := uploadRequest(t, router, tt.field, tt.filename, tt.data)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestUploadHandler_StorageNotConfigured(t *testing.T) {
	router := setupUploadRouter(t, nil)

	resp := uploadRequest(t, router, "file", "brand.png", []byte("png-data"))
	assert.Equal(t, response.CodeServerError, resp.Code)
}
