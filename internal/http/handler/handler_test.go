package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// withChiContext adds chi URL parameters to a request
func withChiContext(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// asUser authenticates req as an approved user
func asUser(t *testing.T, db *gorm.DB, req *http.Request, email, name string) *http.Request {
	t.Helper()
	user := testutil.CreateTestUser(t, db, email, name, true)
	return req.WithContext(auth.WithUserContext(req.Context(), auth.FromUser(user)))
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var problem domain.APIError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))
	return problem
}
