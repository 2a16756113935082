package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/spices/cart/internal/domain"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/internal/auth"
	"github.com/Alturino/spices/internal/config"
	"github.com/Alturino/spices/internal/constants"
	inOtel "github.com/Alturino/spices/internal/otel"
)

const cookiePrefix = "cart_token_"

// CookieName is distinct per channel so a visitor can hold a retail and a wholesale cart
// at the same time.
func CookieName(ch domain.Channel) string {
	return cookiePrefix + ch.String()
}

type Resolver struct {
	ttl    time.Duration
	secure bool
}

func NewResolver(cfg config.Cart) *Resolver {
	ttl := cfg.AnonymousTokenTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Resolver{ttl: ttl, secure: cfg.CookieSecure}
}

// Resolve returns the authenticated user when the request carries a verified token,
// otherwise the anonymous visitor identified by the channel cookie. The anonymous
// identity has an empty token when the visitor has never been issued one.
func (r *Resolver) Resolve(req *http.Request, ch domain.Channel) domain.Identity {
	c, span := otel.Tracer.Start(req.Context(), "Resolver Resolve")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Resolver Resolve").
		Str(constants.KEY_CHANNEL, ch.String()).
		Logger()

	userId, ok, err := auth.UserIdFromContext(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg("ignoring token without usable subject")
	}
	if ok {
		logger.Trace().Str(constants.KEY_USER_ID, userId.String()).Msg("resolved user identity")
		return domain.UserIdentity(userId)
	}

	return domain.AnonymousIdentity(tokenFromCookie(c, req, ch))
}

func tokenFromCookie(c context.Context, req *http.Request, ch domain.Channel) string {
	cookie, err := req.Cookie(CookieName(ch))
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		zerolog.Ctx(c).Warn().
			Str(constants.KEY_TAG, "identity tokenFromCookie").
			Str(constants.KEY_CHANNEL, ch.String()).
			Msg("ignoring malformed cart token cookie")
		return ""
	}
	return cookie.Value
}

// Ensure gives an anonymous identity without a token a freshly minted one and persists
// it in the channel cookie. Identities that already have a key are returned unchanged.
func (r *Resolver) Ensure(w http.ResponseWriter, id domain.Identity, ch domain.Channel) domain.Identity {
	if id.HasKey() {
		return id
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(ch),
		Value:    token,
		Path:     "/",
		MaxAge:   int(r.ttl.Seconds()),
		Expires:  time.Now().Add(r.ttl),
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return domain.AnonymousIdentity(token)
}

// Forget expires the channel cookie.
func (r *Resolver) Forget(w http.ResponseWriter, ch domain.Channel) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(ch),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
