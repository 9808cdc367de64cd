package auth

import (
	"log/slog"
	"net/http"
)

// rbacRules is the static resource/action ruleset. It is deliberately a
// fixed table rather than data driven: the product has exactly three
// roles and the matrix is small enough to read at a glance.
var rbacRules = map[string]map[string][]string{
	"expenses": {
		"create":  {RoleEmployee, RoleManager, RoleAdmin},
		"view":    {RoleEmployee, RoleManager, RoleAdmin},
		"approve": {RoleManager, RoleAdmin},
		"delete":  {RoleAdmin},
	},
	"users": {
		"view":   {RoleManager, RoleAdmin},
		"create": {RoleAdmin},
		"edit":   {RoleAdmin},
		"delete": {RoleAdmin},
	},
	"reports": {
		"view":   {RoleManager, RoleAdmin},
		"create": {RoleManager, RoleAdmin},
		"export": {RoleManager, RoleAdmin},
	},
}

// CheckAccess reports whether role may perform action on resource.
// Unknown resources and actions are denied.
func CheckAccess(role, resource, action string) bool {
	actions, ok := rbacRules[resource]
	if !ok {
		return false
	}
	allowed, ok := actions[action]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

// Require guards a route group with a resource/action check against the
// static ruleset
func (ra *RBACAuthorization) Require(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !CheckAccess(user.Role, resource, action) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"role", user.Role,
					"resource", resource,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireApproveExpense() func(http.Handler) http.Handler {
	return ra.Require("expenses", "approve")
}

func (ra *RBACAuthorization) RequireManageUsers() func(http.Handler) http.Handler {
	return ra.Require("users", "edit")
}

func (ra *RBACAuthorization) RequireViewReports() func(http.Handler) http.Handler {
	return ra.Require("reports", "view")
}
