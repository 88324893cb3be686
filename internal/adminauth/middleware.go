package adminauth

import (
	"errors"
	"net/http"
	"strings"

	apimw "github.com/prodtrack/prodtrack/internal/api/middleware"
	"github.com/prodtrack/prodtrack/internal/api/models"
)

// Middleware creates admin authentication middleware that validates JWT
// bearer tokens. A nil service makes the middleware a pass-through, which is
// the default on a closed LAN.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if svc == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, r, "missing authorization header")
				return
			}

			// Check for Bearer prefix (case-insensitive)
			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "invalid authorization header format")
				return
			}

			tokenString := authHeader[len(bearerPrefix):]
			if tokenString == "" {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			if _, err := svc.ValidateToken(tokenString); err != nil {
				if errors.Is(err, ErrTokenExpired) {
					writeUnauthorized(w, r, "admin token has expired")
				} else {
					writeUnauthorized(w, r, "invalid admin token")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := apimw.GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}
