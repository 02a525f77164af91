package session

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/kirananta/storefront/internal/constants"
	"github.com/kirananta/storefront/internal/errors"
	"github.com/kirananta/storefront/internal/log"
)

var tracer = otel.Tracer(constants.AppStorefront)

// Session identifies the shopper a checkout request acts for. An
// authenticated session carries the user id from the bearer token;
// a guest session is keyed by a client-generated session id.
type Session struct {
	UserID        uuid.UUID
	SessionID     uuid.UUID
	Token         *jwt.Token
	Authenticated bool
}

// Key returns the identifier state is partitioned by: the user id for
// authenticated shoppers, the session id for guests.
func (s Session) Key() uuid.UUID {
	if s.Authenticated {
		return s.UserID
	}
	return s.SessionID
}

type sessionKey struct{}

func AttachToContext(c context.Context, s Session) context.Context {
	return context.WithValue(c, sessionKey{}, s)
}

func FromContext(c context.Context) (Session, error) {
	s, ok := c.Value(sessionKey{}).(Session)
	if !ok {
		return Session{}, errors.ErrEmptySessionID
	}
	return s, nil
}

func VerifyToken(c context.Context, token string, secretKey string) (*jwt.Token, error) {
	c, span := tracer.Start(c, "VerifyToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "VerifyToken").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	jwtToken, err := jwt.ParseWithClaims(token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(constants.AudienceShopper),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Msg("parsed claims")

	if !jwtToken.Valid {
		err = fmt.Errorf("failed validating token with error=%w", errors.ErrTokenInvalid)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, errors.ErrTokenInvalid
	}

	return jwtToken, nil
}

func UserIDFromToken(token *jwt.Token) (uuid.UUID, error) {
	subject, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed getting subject from jwt with error=%w", err)
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
	}
	return userID, nil
}
