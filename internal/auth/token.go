package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/spices/internal/config"
	"github.com/Alturino/spices/internal/constants"
	"github.com/Alturino/spices/internal/otel"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrEmptySubject = errors.New("missing subject")
)

// VerifyToken checks a bearer token issued by the identity provider described by cfg.
func VerifyToken(c context.Context, cfg config.Identity, token string) (*jwt.Token, error) {
	c, span := otel.Tracer.Start(c, "auth VerifyToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "auth VerifyToken").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.SecretKey), nil
		},
		opts...,
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", errors.Join(ErrTokenInvalid, err))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(constants.KEY_PROCESS, "validating token").Logger()
	logger.Trace().Msg("validating token")
	if !jwtToken.Valid {
		err = fmt.Errorf("failed validating token with error=%w", ErrTokenInvalid)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Msg("validated token")

	return jwtToken, nil
}

type jwtToken struct{}

func AttachJwtToken(c context.Context, jwt *jwt.Token) context.Context {
	return context.WithValue(c, jwtToken{}, jwt)
}

// JwtTokenFromContext returns nil when the request carried no bearer token.
func JwtTokenFromContext(c context.Context) *jwt.Token {
	token, _ := c.Value(jwtToken{}).(*jwt.Token)
	return token
}

// UserIdFromContext reports the authenticated user id, if any.
func UserIdFromContext(c context.Context) (uuid.UUID, bool, error) {
	token := JwtTokenFromContext(c)
	if token == nil {
		return uuid.Nil, false, nil
	}
	subject, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed getting subject from jwt with error=%w", err)
	}
	if subject == "" {
		return uuid.Nil, false, ErrEmptySubject
	}
	userId, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
	}
	return userId, true, nil
}
