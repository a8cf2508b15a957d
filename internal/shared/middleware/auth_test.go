package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"

	"bankclient/internal/shared/auth"
)

func protected(tokens *auth.Tokens) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(uid))
	})
	return jwtauth.Verifier(tokens.JWTAuth())(Authenticator(next))
}

func TestAuthenticator(t *testing.T) {
	tokens := auth.NewTokens("a-long-enough-stub-secret", time.Hour)
	valid, err := tokens.Issue("u-1", "alice")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	expired, _ := auth.NewTokens("a-long-enough-stub-secret", -time.Minute).Issue("u-1", "alice")
	forged, _ := auth.NewTokens("some-other-long-secret", time.Hour).Issue("u-1", "alice")

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid", valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"forged", forged, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	handler := protected(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if rr.Body.String() != "u-1" {
					t.Errorf("body = %q, want subject", rr.Body.String())
				}
				return
			}

			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body not JSON: %v", err)
			}
			if body["message"] == "" {
				t.Error("error body has no message")
			}
		})
	}
}
