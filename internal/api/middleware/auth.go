package middleware

import (
	"ctchen222/book-catalog/internal/api/response"
	"ctchen222/book-catalog/internal/auth"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key holding the validated *auth.Claims.
const ClaimsKey = "auth.claims"

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AccessGate rejects requests without a valid bearer token. Routes listed in
// public, written as "METHOD /route/pattern", pass through untouched.
type AccessGate struct {
	validator TokenValidator
	public    map[string]struct{}
}

// NewAccessGate creates a new AccessGate.
func NewAccessGate(validator TokenValidator, public ...string) *AccessGate {
	g := &AccessGate{
		validator: validator,
		public:    make(map[string]struct{}, len(public)),
	}
	for _, route := range public {
		g.public[route] = struct{}{}
	}
	return g
}

// Handler returns the gin middleware.
func (g *AccessGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.isPublic(c) {
			c.Next()
			return
		}

		claims, err := g.authenticate(c.GetHeader("Authorization"))
		if err != nil {
			// The reason stays in the log; callers only learn "unauthorized".
			slog.WarnContext(c.Request.Context(), "request rejected",
				"http.method", c.Request.Method,
				"http.route", c.FullPath(),
				"reason", err)
			response.AbortWithError(c, response.ErrUnauthorized)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func (g *AccessGate) isPublic(c *gin.Context) bool {
	route := c.FullPath()
	if route == "" {
		return false
	}
	_, ok := g.public[c.Request.Method+" "+route]
	return ok
}

func (g *AccessGate) authenticate(header string) (*auth.Claims, error) {
	if header == "" {
		return nil, auth.ErrNoToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, auth.ErrMalformedToken
	}
	return g.validator.Validate(strings.TrimSpace(token))
}
