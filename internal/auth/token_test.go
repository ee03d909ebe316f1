package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-canteen/internal/auth"
	"ms-canteen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	user := &models.User{ID: "u1", Role: models.RoleCanteen}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, string(models.RoleCanteen), claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	other := auth.NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue(&models.User{ID: "u1", Role: models.RoleCustomer})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(&models.User{ID: "u1", Role: models.RoleCustomer})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestExtractTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Token abc")
	_, err = auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Bearer abc")
	token, err := auth.ExtractTokenFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestMiddlewarePopulatesContext(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue(&models.User{ID: "u1", Role: models.RoleCustomer})
	require.NoError(t, err)

	var gotUserID, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		gotRole = auth.Role(r.Context())
	})

	handler := auth.Middleware(issuer)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", gotUserID)
	assert.Equal(t, string(models.RoleCustomer), gotRole)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := auth.Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	protected := auth.Middleware(issuer)(auth.RequireRole(models.RoleCanteen)(next))

	send := func(role models.UserRole) int {
		token, err := issuer.Issue(&models.User{ID: "u1", Role: role})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send(models.RoleCanteen))
	assert.Equal(t, http.StatusOK, send(models.RoleSuperAdmin))
	assert.Equal(t, http.StatusForbidden, send(models.RoleCustomer))
}
