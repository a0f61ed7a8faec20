package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/http/handler"
	"github.com/straye-as/quotation-api/internal/repository"
	"github.com/straye-as/quotation-api/internal/service"
	"github.com/straye-as/quotation-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeValidator struct {
	identity *auth.Identity
	err      error
}

func (f *fakeValidator) ValidateToken(string) (*auth.Identity, error) {
	return f.identity, f.err
}

type authFixture struct {
	db          *gorm.DB
	validator   *fakeValidator
	authHandler *handler.AuthHandler
	userHandler *handler.UserHandler
}

func setupAuthHandlers(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	authService := service.NewAuthService(repository.NewUserRepository(db), zap.NewNop())
	validator := &fakeValidator{}
	return &authFixture{
		db:          db,
		validator:   validator,
		authHandler: handler.NewAuthHandler(validator, authService, zap.NewNop()),
		userHandler: handler.NewUserHandler(authService, zap.NewNop()),
	}
}

func (f *authFixture) callback(t *testing.T, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.authHandler.Callback(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", jsonBody(t, body)))
	return w
}

func (f *authFixture) setApproval(t *testing.T, id string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+id+"/approval", jsonBody(t, body))
	w := httptest.NewRecorder()
	f.userHandler.SetApproval(w, withChiContext(r, map[string]string{"id": id}))
	return w
}

func TestAuthHandler_CallbackApprovalGate(t *testing.T) {
	f := setupAuthHandlers(t)
	f.validator.identity = &auth.Identity{Email: "Lee@Example.com", Name: "Lee"}

	// First sign-in registers the user and waits for approval
	w := f.callback(t, domain.AuthCallbackRequest{IDToken: "token"})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Your account is waiting for administrator approval", decodeProblem(t, w).Detail)

	w = f.callback(t, domain.AuthCallbackRequest{IDToken: "token"})
	require.Equal(t, http.StatusForbidden, w.Code)

	user, err := repository.NewUserRepository(f.db).GetByEmail(context.Background(), "lee@example.com")
	require.NoError(t, err)
	assert.False(t, user.IsApproved)

	w = f.setApproval(t, user.ID.String(), map[string]bool{"approved": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.callback(t, domain.AuthCallbackRequest{IDToken: "token"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session domain.SessionUserDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&session))
	assert.Equal(t, user.ID, session.ID)
	assert.Equal(t, "lee@example.com", session.Email)
	assert.True(t, session.IsApproved)
}

func TestAuthHandler_CallbackRejectsTokens(t *testing.T) {
	f := setupAuthHandlers(t)

	w := f.callback(t, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeProblem(t, w).Errors, "idToken")

	f.validator.err = auth.ErrExpiredToken
	w = f.callback(t, domain.AuthCallbackRequest{IDToken: "old"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has expired", decodeProblem(t, w).Detail)

	f.validator.err = auth.ErrInvalidToken
	w = f.callback(t, domain.AuthCallbackRequest{IDToken: "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", decodeProblem(t, w).Detail)
}

func TestAuthHandler_Me(t *testing.T) {
	f := setupAuthHandlers(t)

	w := httptest.NewRecorder()
	f.authHandler.Me(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := asUser(t, f.db, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), "kim@example.com", "Kim")
	w = httptest.NewRecorder()
	f.authHandler.Me(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var me domain.SessionUserDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&me))
	assert.Equal(t, "kim@example.com", me.Email)
	assert.Equal(t, "Kim", me.Name)
	assert.Equal(t, domain.UserRoleUser, me.Role)
}

func TestUserHandler_SetApproval(t *testing.T) {
	f := setupAuthHandlers(t)
	user := testutil.CreateTestUser(t, f.db, "sam@example.com", "Sam", true)

	w := f.setApproval(t, user.ID.String(), map[string]bool{"approved": false})
	require.Equal(t, http.StatusOK, w.Code)
	var dto domain.SessionUserDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.False(t, dto.IsApproved)

	w = f.setApproval(t, user.ID.String(), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.setApproval(t, "nope", map[string]bool{"approved": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.setApproval(t, uuid.NewString(), map[string]bool{"approved": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
