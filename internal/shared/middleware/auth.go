package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"bankclient/internal/shared/auth"
)

type ContextKey string

const (
	UserIDKey   ContextKey = "user_id"
	UsernameKey ContextKey = "username"
)

// Authenticator rejects requests whose token jwtauth.Verifier could not
// validate, answering with the ledger's JSON error body. It stores the
// token subject under UserIDKey.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			log.Debugf("Rejected token: %v", err)
			unauthorized(w, "Invalid or expired token")
			return
		}

		uid, _ := claims[auth.ClaimSubject].(string)
		if uid == "" {
			unauthorized(w, "Token has no subject")
			return
		}
		username, _ := claims[auth.ClaimUsername].(string)

		ctx := context.WithValue(r.Context(), UserIDKey, uid)
		ctx = context.WithValue(ctx, UsernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated subject.
func UserID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserIDKey).(string)
	return uid, ok && uid != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(http.StatusUnauthorized),
		"message": message,
	})
}
