package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/spices/cart/internal/domain"
	"github.com/Alturino/spices/internal/auth"
	"github.com/Alturino/spices/internal/config"
)

func newResolver() *Resolver {
	return NewResolver(config.Cart{AnonymousTokenTTL: 720 * time.Hour, CookieSecure: true})
}

func TestResolve(t *testing.T) {
	userId := uuid.New()
	b2cToken := uuid.NewString()
	b2bToken := uuid.NewString()

	tests := []struct {
		name     string
		request  func() *http.Request
		channel  domain.Channel
		expected domain.Identity
	}{
		{
			name: "given verified token should resolve user regardless of channel cookies",
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/carts/b2c", nil)
				r.AddCookie(&http.Cookie{Name: CookieName(domain.ChannelB2C), Value: b2cToken})
				token := &jwt.Token{Claims: &jwt.RegisteredClaims{Subject: userId.String()}, Valid: true}
				return r.WithContext(auth.AttachJwtToken(r.Context(), token))
			},
			channel:  domain.ChannelB2C,
			expected: domain.UserIdentity(userId),
		},
		{
			name: "given b2c cookie should resolve anonymous b2c token",
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/carts/b2c", nil)
				r.AddCookie(&http.Cookie{Name: CookieName(domain.ChannelB2C), Value: b2cToken})
				r.AddCookie(&http.Cookie{Name: CookieName(domain.ChannelB2B), Value: b2bToken})
				return r
			},
			channel:  domain.ChannelB2C,
			expected: domain.AnonymousIdentity(b2cToken),
		},
		{
			name: "given b2b channel should read the b2b cookie only",
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/carts/b2b", nil)
				r.AddCookie(&http.Cookie{Name: CookieName(domain.ChannelB2C), Value: b2cToken})
				r.AddCookie(&http.Cookie{Name: CookieName(domain.ChannelB2B), Value: b2bToken})
				return r
			},
			channel:  domain.ChannelB2B,
			expected: domain.AnonymousIdentity(b2bToken),
		},
		{
			name: "given no cookie should resolve anonymous identity without token",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/carts/b2b", nil)
			},
			channel:  domain.ChannelB2B,
			expected: domain.AnonymousIdentity(""),
		},
		{
			name: "given malformed cookie should ignore it",
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/carts/b2c", nil)
				r.AddCookie(&http.Cookie{Name: CookieName(domain.ChannelB2C), Value: "not-a-token"})
				return r
			},
			channel:  domain.ChannelB2C,
			expected: domain.AnonymousIdentity(""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := newResolver().Resolve(tt.request(), tt.channel)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestEnsureMintsTokenOnce(t *testing.T) {
	resolver := newResolver()

	w := httptest.NewRecorder()
	minted := resolver.Ensure(w, domain.AnonymousIdentity(""), domain.ChannelB2B)
	require.True(t, minted.HasKey())
	assert.True(t, minted.IsAnonymous())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName(domain.ChannelB2B), cookies[0].Name)
	assert.Equal(t, minted.Token, cookies[0].Value)
	assert.Equal(t, int((720 * time.Hour).Seconds()), cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	w = httptest.NewRecorder()
	again := resolver.Ensure(w, minted, domain.ChannelB2B)
	assert.Equal(t, minted, again)
	assert.Empty(t, w.Result().Cookies())

	w = httptest.NewRecorder()
	user := domain.UserIdentity(uuid.New())
	assert.Equal(t, user, resolver.Ensure(w, user, domain.ChannelB2C))
	assert.Empty(t, w.Result().Cookies())
}

func TestForgetExpiresCookie(t *testing.T) {
	w := httptest.NewRecorder()
	newResolver().Forget(w, domain.ChannelB2C)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName(domain.ChannelB2C), cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestIdentityKeyHashesAnonymousToken(t *testing.T) {
	token := uuid.NewString()
	id := domain.AnonymousIdentity(token)

	assert.NotEqual(t, token, id.Key())
	assert.Len(t, id.Key(), 64)
	assert.Equal(t, domain.HashToken(token), id.Key())

	userId := uuid.New()
	assert.Equal(t, userId.String(), domain.UserIdentity(userId).Key())
}
