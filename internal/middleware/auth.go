package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kirananta/storefront/internal/errors"
	inHttp "github.com/kirananta/storefront/internal/http"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/internal/session"
)

// ResolveSession resolves every request into a session principal. A valid
// bearer token yields an authenticated session; otherwise the request is a
// guest session keyed by the X-Session-Id header. A guest request without a
// session id gets one generated and echoed back on the response.
func ResolveSession(secretKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := r.Context()
			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware ResolveSession").Logger()

			authorization := r.Header.Get("Authorization")
			if authorization != "" {
				token := strings.TrimPrefix(strings.TrimPrefix(authorization, "Bearer "), "bearer ")
				jwtToken, err := session.VerifyToken(c, token, secretKey)
				if err != nil {
					logger.Error().Err(err).Msg(err.Error())
					inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
						"status":     "failed",
						"statusCode": http.StatusUnauthorized,
						"message":    errors.ErrTokenInvalid.Error(),
					})
					return
				}
				userID, err := session.UserIDFromToken(jwtToken)
				if err != nil {
					logger.Error().Err(err).Msg(err.Error())
					inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
						"status":     "failed",
						"statusCode": http.StatusUnauthorized,
						"message":    errors.ErrTokenInvalid.Error(),
					})
					return
				}
				s := session.Session{UserID: userID, Token: jwtToken, Authenticated: true}
				logger = logger.With().Str(log.KeyUserID, userID.String()).Logger()
				logger.Trace().Msg("resolved authenticated session")
				c = logger.WithContext(session.AttachToContext(c, s))
				next.ServeHTTP(w, r.WithContext(c))
				return
			}

			sessionID, err := uuid.Parse(r.Header.Get(inHttp.KeyHeaderSessionID))
			if err != nil {
				sessionID = uuid.New()
			}
			w.Header().Set(inHttp.KeyHeaderSessionID, sessionID.String())
			s := session.Session{SessionID: sessionID}
			logger = logger.With().Str(log.KeySessionID, sessionID.String()).Logger()
			logger.Trace().Msg("resolved guest session")
			c = logger.WithContext(session.AttachToContext(c, s))
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

// RequireAuth rejects requests that did not resolve to an authenticated
// session. Mounted after ResolveSession on admin-facing surfaces.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context()
		logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware RequireAuth").Logger()

		s, err := session.FromContext(c)
		if err != nil || !s.Authenticated {
			logger.Error().Err(errors.ErrEmptyAuth).Msg(errors.ErrEmptyAuth.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusUnauthorized,
				"message":    errors.ErrEmptyAuth.Error(),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
