package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/service"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware validates bearer tokens and enforces role membership.
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireRole validates the JWT from the Authorization header and checks the
// token's role against the allowed set. Superadmin passes every admin gate.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := map[model.Role]bool{}
	for _, r := range roles {
		allowed[r] = true
	}
	if allowed[model.RoleAdmin] {
		allowed[model.RoleSuperadmin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				http.Error(w, `{"success":false,"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := m.authSvc.ValidateToken(token)
			if err != nil {
				http.Error(w, `{"success":false,"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			if !allowed[claims.Role] {
				http.Error(w, `{"success":false,"error":"insufficient role"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims extracts the authenticated claims from context.
func GetClaims(ctx context.Context) *model.Claims {
	if v := ctx.Value(claimsKey); v != nil {
		return v.(*model.Claims)
	}
	return nil
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
