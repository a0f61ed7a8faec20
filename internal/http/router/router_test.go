package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/http/handler"
	"github.com/straye-as/quotation-api/internal/http/middleware"
	"github.com/straye-as/quotation-api/internal/http/router"
	"github.com/straye-as/quotation-api/internal/metrics"
	"github.com/straye-as/quotation-api/internal/repository"
	"github.com/straye-as/quotation-api/internal/service"
	"github.com/straye-as/quotation-api/internal/storage"
	"github.com/straye-as/quotation-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-key"

type rejectAll struct{}

func (rejectAll) ValidateToken(string) (*auth.Identity, error) {
	return nil, auth.ErrInvalidToken
}

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Environment: "development"},
		ApiKey:   config.ApiKeyConfig{Value: testAPIKey},
		Storage:  config.StorageConfig{PublicPrefix: "/uploads", MaxUploadSizeMB: 1},
		Server:   config.ServerConfig{RequestTimeout: 10},
		Security: config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	m := metrics.New()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	quotationService := service.NewQuotationService(repository.NewQuotationRepository(db), m, logger)
	uploadService := service.NewUploadService(store, cfg.Storage.PublicPrefix, m, logger)
	exportService := service.NewExportService(quotationService, uploadService, logger)
	authService := service.NewAuthService(repository.NewUserRepository(db), logger)

	rt := router.NewRouter(
		cfg,
		logger,
		db,
		m,
		auth.NewMiddleware(rejectAll{}, authService, cfg.ApiKey.Value, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		handler.NewQuotationHandler(quotationService, exportService, logger),
		handler.NewUploadHandler(uploadService, cfg.Storage.MaxUploadBytes(), logger),
		handler.NewAuthHandler(rejectAll{}, authService, logger),
		handler.NewUserHandler(authService, logger),
	)
	srv := httptest.NewServer(rt.Setup())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body io.Reader, contentType string, withKey bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if withKey {
		req.Header.Set("x-api-key", testAPIKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouter_Health(t *testing.T) {
	srv := setupServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/health", nil, "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = do(t, http.MethodGet, srv.URL+"/health/ready", nil, "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var ready map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	assert.Equal(t, "healthy", ready["status"])
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	srv := setupServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/quotations", nil, "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/quotations", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer forged")
	bearer, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer bearer.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, bearer.StatusCode)

	// Sign-in is public but rejects the token
	resp = do(t, http.MethodPost, srv.URL+"/api/v1/auth/callback", strings.NewReader(`{"idToken":"x"}`), "application/json", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_QuotationLifecycle(t *testing.T) {
	srv := setupServer(t)

	// Upload an image and reference it from the layout tab
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "layout.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not really a png"))
	require.NoError(t, mw.Close())

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/uploads", &buf, mw.FormDataContentType(), true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var upload domain.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&upload))

	// Uploads are served without authentication
	resp = do(t, http.MethodGet, srv.URL+upload.Path, nil, "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "not really a png", string(data))

	payload, err := json.Marshal(domain.SaveQuotationRequest{
		Title:        "Warehouse",
		CustomerName: "ACME",
		ImageLayout:  upload.Path,
		Items:        []domain.LineItemRequest{{Name: "Panel", Quantity: 3, UnitPrice: 100}},
	})
	require.NoError(t, err)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/quotations", bytes.NewReader(payload), "application/json", true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.IDResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/quotations/"+created.ID.String(), nil, "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dto domain.QuotationDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	assert.Equal(t, float64(330), dto.GrandTotal)
	assert.Equal(t, upload.Path, dto.ImageLayout)
	// API key callers are not recorded as editors
	assert.Nil(t, dto.EditorID)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/quotations/"+created.ID.String()+"/export", nil, "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Warehouse.xlsx")

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/quotations/"+created.ID.String(), nil, "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/quotations/"+created.ID.String(), nil, "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/metrics", nil, "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `route="/api/v1/quotations/{id}"`)
}
