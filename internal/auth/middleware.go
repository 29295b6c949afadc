package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

type contextKey struct{}

var userContextKey contextKey

// UserFromContext returns the principal stored by Middleware.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey).(User)
	return user, ok
}

// Middleware authenticates requests with HTTP Basic credentials and enforces
// the policy table before the router dispatches. Authentication failures
// yield 401, role failures 403, both in the same JSON envelope the handlers
// use.
func Middleware(users *UserStore, policy Policy, logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := policy.Decide(r.Method, r.URL.Path)
			if decision.Public {
				next.ServeHTTP(w, r)
				return
			}

			name, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			user, ok := users.Authenticate(name, password)
			if !ok {
				logger.Printf("auth: rejected credentials for %q on %s %s", name, r.Method, r.URL.Path)
				unauthorized(w)
				return
			}

			if !decision.Allows(user.Role) {
				logger.Printf("auth: %s (%s) denied %s %s", user.Name, user.Role, r.Method, r.URL.Path)
				forbidden(w)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="tours-api"`)
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
}

func forbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient role for this operation")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}
