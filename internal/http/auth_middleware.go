package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type authContextKey string

const contextKeyUserID authContextKey = "serenity-user-id"

// requireAuth resolves the bearer token to a user identity before the
// handler body runs; the request fails uniformly when the token is missing
// or invalid.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		tok, err := bearerToken(req.Header.Get("Authorization"))
		if err != nil {
			r.logger.Warn("authorization header invalid", "error", err, "path", req.URL.Path)
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		userID, err := r.auth.Authorize(tok)
		if err != nil {
			r.logger.Warn("token validation failed", "error", err, "path", req.URL.Path)
			writeMessage(w, http.StatusUnauthorized, "authentication failed")
			return
		}
		ctx := context.WithValue(req.Context(), contextKeyUserID, userID)
		next(w, req.WithContext(ctx))
	}
}

// userIDFromContext extracts the authenticated identity from context.
func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeyUserID).(string)
	return id, ok && id != ""
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
