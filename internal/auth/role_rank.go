package auth

import (
	"log/slog"
	"net/http"
)

// roleRank orders roles for at-least checks. This mechanism predates the
// resource/action ruleset and some route groups still use it; the two can
// answer differently for the same user and both remain in force.
var roleRank = map[string]int{
	RoleEmployee: 1,
	RoleManager:  2,
	RoleAdmin:    3,
}

// HasMinimumRole reports whether role ranks at or above minRole.
// Unknown roles rank at zero and never pass.
func HasMinimumRole(role, minRole string) bool {
	return roleRank[role] >= roleRank[minRole] && roleRank[role] > 0
}

// RequireRole guards a route group with an at-least role check
func RequireRole(minRole string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				logger.Warn("role check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !HasMinimumRole(user.Role, minRole) {
				logger.WarnContext(r.Context(), "access denied: role below minimum",
					"user_id", user.ID,
					"role", user.Role,
					"minimum_role", minRole)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
