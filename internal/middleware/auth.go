package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/spices/internal/auth"
	"github.com/Alturino/spices/internal/config"
	"github.com/Alturino/spices/internal/constants"
	inHttp "github.com/Alturino/spices/internal/http"
)

// OptionalAuth attaches a verified identity-provider token to the request context.
// Requests without an Authorization header pass through as anonymous; a header that
// fails verification is rejected.
func OptionalAuth(cfg config.Identity) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(constants.KEY_TAG, "middleware OptionalAuth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get(inHttp.KEY_HEADER_AUTHORIZATION)
			if authorization == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(authorization, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				logger.Error().Err(auth.ErrTokenInvalid).Msg("malformed authorization header")
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    auth.ErrTokenInvalid.Error(),
				})
				return
			}

			jwtToken, err := auth.VerifyToken(c, cfg, token)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    auth.ErrTokenInvalid.Error(),
				})
				return
			}

			c = auth.AttachJwtToken(c, jwtToken)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
