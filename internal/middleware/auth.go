package middleware

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/twilightcoders/cardgames/internal/auth"
)

// BearerAuth verifies an "Authorization: Bearer <jwt>" header when present and stores the claims
// in the request context. Requests without a header pass through anonymously; a bad token is a 401.
func BearerAuth(signer *auth.Signer, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				http.Error(w, "malformed authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := signer.AuthenticateJWT(strings.TrimSpace(token))
			if err != nil {
				logger.WithError(err).WithField("remote", r.RemoteAddr).Debug("rejected bearer token")
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
