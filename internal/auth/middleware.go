package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// FailureRecorder is notified when a request is rejected for missing or
// invalid credentials.
type FailureRecorder interface {
	RecordAuthFailure(reason string)
}

// SessionMiddleware validates the bearer session token and injects the user
// into the request context. rec may be nil.
func SessionMiddleware(sessions SessionLookup, rec FailureRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				if rec != nil {
					rec.RecordAuthFailure("missing_token")
				}
				writeUnauthorized(w, "Token no proporcionado")
				return
			}

			user, err := sessions.LookupSession(r.Context(), token)
			if err != nil || user == nil {
				if rec != nil {
					rec.RecordAuthFailure("invalid_token")
				}
				writeUnauthorized(w, "Token inválido o expirado")
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{
			Code:    "unauthorized",
			Message: message,
		},
	})
}
