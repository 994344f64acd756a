package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/alecgard/taskhub/internal/auth"
)

// Scopes reported to the rejection callback.
const (
	ScopeUser = "user"
	ScopeIP   = "ip"
)

// Middleware enforces limiter per caller. Authenticated requests (a user set
// by auth.SessionMiddleware) are keyed by user ID; anonymous ones by client
// address, so login and register are limited too.
//
// Rate-limit headers are always set on the response:
//
//	X-RateLimit-Limit     maximum requests allowed in the window
//	X-RateLimit-Remaining tokens remaining in the current window
//	X-RateLimit-Reset     Unix timestamp when the bucket is fully replenished
func Middleware(limiter *Limiter, onReject func(scope string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, key := identify(r)

			d := limiter.Take(scope + ":" + key)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				if onReject != nil {
					onReject(scope)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"code":    "rate_limited",
						"message": "Demasiadas solicitudes. Inténtalo más tarde.",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func identify(r *http.Request) (scope, key string) {
	if u := auth.UserFromContext(r.Context()); u != nil {
		return ScopeUser, u.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return ScopeIP, host
}
