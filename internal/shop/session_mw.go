package shop

import (
	"context"
	"net/http"

	"MiniShop/pkg/kit"
)

// sessionHeader carries the opaque token issued at login.
const sessionHeader = "X-Session-Id"

type ctxKey string

const usernameKey ctxKey = "username"

func UsernameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(usernameKey).(string)
	return v, ok
}

// RequireSession guards the store routes: requests whose token does not
// resolve to a logged-in user are rejected before reaching a handler.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(sessionHeader)
		if token == "" {
			kit.WriteError(w, r, http.StatusForbidden, "Not logged in", nil)
			return
		}

		username, ok := s.Sessions.Resolve(token)
		if !ok {
			kit.WriteError(w, r, http.StatusForbidden, "Not logged in", nil)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
