package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/handler/http/response"
)

type ctxKey int

const (
	tenantKey ctxKey = iota
	actorKey
)

// RequireTenant takes the tenant from the `company_id` claim and the actor from
// `user_id`, and puts both on the request context.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		companyID, ok := claims["company_id"].(string)
		if !ok || companyID == "" {
			response.Unauthorized(w, "Company ID not found in token")
			return
		}

		actor, _ := claims["user_id"].(string)
		if actor == "" {
			actor = audit.SystemActor
		}

		ctx := context.WithValue(r.Context(), tenantKey, companyID)
		ctx = context.WithValue(ctx, actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantID returns the tenant set by RequireTenant.
func TenantID(ctx context.Context) string {
	id, _ := ctx.Value(tenantKey).(string)
	return id
}

// Actor returns the acting user set by RequireTenant.
func Actor(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey).(string)
	if actor == "" {
		return audit.SystemActor
	}
	return actor
}
