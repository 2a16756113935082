package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/spices/internal/auth"
	"github.com/Alturino/spices/internal/config"
	inHttp "github.com/Alturino/spices/internal/http"
)

func TestOptionalAuth(t *testing.T) {
	cfg := config.Identity{SecretKey: "secret"}
	userId := uuid.New()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userId.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(cfg.SecretKey))
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		status        int
		authenticated bool
	}{
		{name: "given no header should pass as anonymous", status: http.StatusOK},
		{name: "given valid bearer should attach token", authorization: "Bearer " + signed, status: http.StatusOK, authenticated: true},
		{name: "given lowercase scheme should attach token", authorization: "bearer " + signed, status: http.StatusOK, authenticated: true},
		{name: "given other scheme should reject", authorization: "Basic " + signed, status: http.StatusUnauthorized},
		{name: "given invalid bearer should reject", authorization: "Bearer nope", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := OptionalAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				actual, ok, err := auth.UserIdFromContext(r.Context())
				require.NoError(t, err)
				assert.Equal(t, tt.authenticated, ok)
				if ok {
					assert.Equal(t, userId, actual)
				}
				w.WriteHeader(http.StatusOK)
			}))

			r := httptest.NewRequest(http.MethodGet, "/carts/b2c", nil)
			if tt.authorization != "" {
				r.Header.Set(inHttp.KEY_HEADER_AUTHORIZATION, tt.authorization)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status == http.StatusOK, reached)
		})
	}
}
