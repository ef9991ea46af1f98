// Package api implements the knowledge-base REST API using chi.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jly61/knowledge-and-blog/internal/auth"
)

// Auth modes.
const (
	AuthDisabled = "disabled"
	AuthToken    = "token"
	AuthJWT      = "jwt"
)

// AuthConfig selects how requests are authenticated.
//
//   - "disabled": every request acts as DefaultUser.
//   - "token": a static Bearer token is required; requests act as DefaultUser.
//   - "jwt": an HS256 Bearer token signed with JWTSecret is required; its subject is the user.
type AuthConfig struct {
	Mode        string
	Token       string
	JWTSecret   []byte
	DefaultUser string
}

// AuthMiddleware authenticates the request and stores the user id in its context.
func AuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer, hasBearer := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			bearer = strings.TrimSpace(bearer)

			var user string
			switch cfg.Mode {
			case AuthToken:
				if !hasBearer || bearer != cfg.Token {
					writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
					return
				}
				user = cfg.DefaultUser
			case AuthJWT:
				sub, err := auth.ParseToken(bearer, cfg.JWTSecret)
				if !hasBearer || err != nil {
					slog.Debug("jwt rejected", slog.Any("error", err))
					writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
					return
				}
				user = sub
			default:
				user = cfg.DefaultUser
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// userID returns the authenticated user of the request.
func userID(r *http.Request) string {
	id, _ := auth.UserFromContext(r.Context())
	return id
}
