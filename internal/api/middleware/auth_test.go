package middleware

import (
	"ctchen222/book-catalog/internal/auth"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newGatedRouter(t *testing.T, now func() time.Time) (*gin.Engine, *auth.TokenIssuer) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: []byte("gate-secret"), TTL: 7 * time.Hour})
	require.NoError(t, err)
	issuer = issuer.WithClock(now)

	r := gin.New()
	r.Use(NewAccessGate(issuer, "POST /auth/login", "POST /auth/register").Handler())
	r.POST("/auth/login", func(c *gin.Context) { c.String(http.StatusOK, "login") })
	r.POST("/auth/register", func(c *gin.Context) { c.String(http.StatusCreated, "register") })
	r.GET("/auth/login", func(c *gin.Context) { c.String(http.StatusOK, "wrong method") })
	r.GET("/books", func(c *gin.Context) {
		claims, ok := auth.ClaimsFromContext(c.Request.Context())
		if !ok {
			c.String(http.StatusInternalServerError, "no claims on request context")
			return
		}
		if _, ok := c.Get(ClaimsKey); !ok {
			c.String(http.StatusInternalServerError, "no claims on gin context")
			return
		}
		c.String(http.StatusOK, claims.Username())
	})
	return r, issuer
}

func request(r http.Handler, method, target, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccessGate_AllowList(t *testing.T) {
	r, _ := newGatedRouter(t, func() time.Time { return testNow })

	assert.Equal(t, http.StatusOK, request(r, http.MethodPost, "/auth/login", "").Code)
	assert.Equal(t, http.StatusCreated, request(r, http.MethodPost, "/auth/register", "").Code)
	// Only the listed method is public.
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/auth/login", "").Code)
}

func TestAccessGate_ValidToken(t *testing.T) {
	r, issuer := newGatedRouter(t, func() time.Time { return testNow })
	token, _, err := issuer.Issue("alice")
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + token, "bearer " + token} {
		w := request(r, http.MethodGet, "/books", header)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", w.Body.String())
	}
}

func TestAccessGate_Rejections(t *testing.T) {
	now := testNow
	r, issuer := newGatedRouter(t, func() time.Time { return now })
	token, exp, err := issuer.Issue("alice")
	require.NoError(t, err)

	other, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: []byte("another-secret"), TTL: time.Hour})
	require.NoError(t, err)
	forged, _, err := other.WithClock(func() time.Time { return testNow }).Issue("alice")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header"},
		{name: "basic scheme", header: "Basic YWxpY2U6U2VjcmV0MTIz"},
		{name: "bearer without token", header: "Bearer "},
		{name: "token without scheme", header: token},
		{name: "garbage token", header: "Bearer not-a-token"},
		{name: "wrong signing key", header: "Bearer " + forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(r, http.MethodGet, "/books", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"status":"Error","code":401,"message":"unauthorized"}`, w.Body.String())
		})
	}

	t.Run("expired", func(t *testing.T) {
		now = exp
		w := request(r, http.MethodGet, "/books", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAccessGate_UnknownRouteRequiresToken(t *testing.T) {
	r, issuer := newGatedRouter(t, func() time.Time { return testNow })

	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/nowhere", "").Code)

	token, _, err := issuer.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, request(r, http.MethodGet, "/nowhere", "Bearer "+token).Code)
}
