package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
	"github.com/noah-isme/elearn-api/pkg/logger"
)

type fakeResolver struct {
	tokens      map[string]string
	identities  map[string]*models.Identity
	identifyErr error
}

func (f *fakeResolver) ValidateToken(token string) (*models.JWTClaims, error) {
	userID, ok := f.tokens[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: userID}, nil
}

func (f *fakeResolver) Identify(ctx context.Context, userID string) (*models.Identity, error) {
	if f.identifyErr != nil {
		return nil, f.identifyErr
	}
	identity, ok := f.identities[userID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
	}
	return identity, nil
}

type fakeSessions struct{ userID string }

func (f fakeSessions) UserID(r *http.Request) string { return f.userID }

func newResolver() *fakeResolver {
	studentID := "student-1"
	return &fakeResolver{
		tokens:     map[string]string{"good-token": "u1"},
		identities: map[string]*models.Identity{"u1": {UserID: "u1", Username: "alice", Role: models.RoleStudent, Active: true, StudentID: &studentID}},
	}
}

func serveIdentity(t *testing.T, mw gin.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, *models.Identity, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen *models.Identity
	var logged string
	r := gin.New()
	r.Use(mw)
	r.GET("/probe", func(c *gin.Context) {
		seen = CurrentIdentity(c)
		logged = c.GetString(logger.UserIDKey)
		c.Status(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec, seen, logged
}

func TestAuthenticateBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec, identity, logged := serveIdentity(t, Authenticate(newResolver(), nil), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, identity)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "u1", logged)
}

func TestAuthenticateRejectsBadBearer(t *testing.T) {
	for _, header := range []string{"Bearer nope", "Basic abc", "token"} {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", header)

		rec, identity, _ := serveIdentity(t, Authenticate(newResolver(), fakeSessions{userID: "u1"}), req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Nil(t, identity)
	}
}

func TestAuthenticateFallsBackToSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)

	rec, identity, _ := serveIdentity(t, Authenticate(newResolver(), fakeSessions{userID: "u1"}), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, identity)
	assert.Equal(t, "u1", identity.UserID)
}

func TestAuthenticateStaleSessionIsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)

	rec, identity, _ := serveIdentity(t, Authenticate(newResolver(), fakeSessions{userID: "deleted"}), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, identity)
}

func TestAuthenticateSessionBackendFailure(t *testing.T) {
	resolver := newResolver()
	resolver.identifyErr = appErrors.Wrap(assert.AnError, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve identity")
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)

	rec, _, _ := serveIdentity(t, Authenticate(resolver, fakeSessions{userID: "u1"}), req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOptionalAuthenticateNeverBlocks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer nope")

	rec, identity, _ := serveIdentity(t, OptionalAuthenticate(newResolver(), nil), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, identity)
}
