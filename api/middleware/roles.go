package middleware

import (
	"net/http"

	"github.com/webyarden/webyarden-backend/api/responses"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/logger"
)

// RequireRole admits only callers whose role (set by Auth) is in roles.
// Anonymous callers get 401, authenticated callers with another role 403.
func RequireRole(logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[enums.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if _, ok := allowed[role]; ok {
				next.ServeHTTP(w, r)
				return
			}
			err := pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
			if role == "" {
				err = pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
			}
			responses.WriteError(r.Context(), logg, w, err)
		})
	}
}
