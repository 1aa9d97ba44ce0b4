package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/katalux/roofers-landing/pkg/logging"
)

// DefaultAdminAudience is the audience operator tokens must carry when
// none is configured.
const DefaultAdminAudience = "katalux-leads-admin"

type operatorKey struct{}

// Operator identifies the caller of an admin lead endpoint.
type Operator struct {
	Subject   string
	ExpiresAt time.Time
}

// AdminAuthConfig scopes which tokens may read leads.
type AdminAuthConfig struct {
	Secret   string
	Audience string
	Logger   *logging.Logger
}

// AdminJWT accepts HS256 tokens signed with cfg.Secret that name
// cfg.Audience, carry a subject, and expire. Leads hold visitor contact
// details, so a token minted for another service with the same secret is
// rejected.
func AdminJWT(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = DefaultAdminAudience
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	key := []byte(cfg.Secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Secret == "" {
				http.Error(w, "admin auth disabled", http.StatusUnauthorized)
				return
			}
			tokenString, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims := jwt.RegisteredClaims{}
			token, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
				return key, nil
			})
			if err != nil || !token.Valid {
				logger.Warn("admin token rejected", "error", err, "path", r.URL.Path)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if strings.TrimSpace(claims.Subject) == "" {
				http.Error(w, "token has no subject", http.StatusForbidden)
				return
			}
			op := Operator{Subject: claims.Subject}
			if claims.ExpiresAt != nil {
				op.ExpiresAt = claims.ExpiresAt.Time
			}
			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), op)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithOperator attaches op to ctx.
func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// OperatorFromContext returns the authenticated operator, if any.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(Operator)
	return op, ok
}
