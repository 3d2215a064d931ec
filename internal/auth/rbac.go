package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization gates routes on the permission strings expanded
// from the user's role by the auth middleware.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

// Middleware requires any of the given permissions on the context user.
// Admin satisfies every gate through its own permission set.
func (ra *RBACAuthorization) Middleware(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasAnyPermission(permissions) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireViewEmployees() func(http.Handler) http.Handler {
	return ra.Middleware(PermViewEmployees, PermAdmin)
}

func (ra *RBACAuthorization) RequireViewSalaries() func(http.Handler) http.Handler {
	return ra.Middleware(PermViewSalaries, PermAdmin)
}

func (ra *RBACAuthorization) RequireManageEmployees() func(http.Handler) http.Handler {
	return ra.Middleware(PermManageEmployees, PermAdmin)
}

func (ra *RBACAuthorization) RequireDeleteEmployees() func(http.Handler) http.Handler {
	return ra.Middleware(PermDeleteEmployees, PermAdmin)
}

func (ra *RBACAuthorization) RequireAcknowledgeAlerts() func(http.Handler) http.Handler {
	return ra.Middleware(PermAcknowledgeAlerts, PermAdmin)
}

func (ra *RBACAuthorization) RequireRunScans() func(http.Handler) http.Handler {
	return ra.Middleware(PermRunScans, PermAdmin)
}

func (ra *RBACAuthorization) RequireManageSettings() func(http.Handler) http.Handler {
	return ra.Middleware(PermManageSettings, PermAdmin)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Middleware(PermAdmin)
}
