package auth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/authn"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type jwtVerifier struct {
	publicKey *ecdsa.PublicKey
	keyID     string
}

func newJWTVerifierFromPEM(publicKeyPEM string) (*jwtVerifier, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("JWT public key not provided")
	}

	publicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, err
	}

	keyID, err := KeyID(publicKey)
	if err != nil {
		return nil, err
	}

	return &jwtVerifier{publicKey: publicKey, keyID: keyID}, nil
}

// NewJWTAuthFunc returns an authn.AuthFunc that validates Bearer JWTs.
// Requests without a token are anonymous and carry uuid.Nil, leaving the
// decision to the authorization gate. On success the subject is returned as a
// uuid.UUID which can be retrieved via ActorFromContext.
func NewJWTAuthFunc(publicKeyPEM string) (authn.AuthFunc, error) {
	v, err := newJWTVerifierFromPEM(publicKeyPEM)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, req *http.Request) (any, error) {
		tokenStr, ok := authn.BearerToken(req)
		if !ok {
			return uuid.Nil, nil
		}

		parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodES256 {
				return nil, errors.New("invalid signing method")
			}
			if kid, _ := t.Header["kid"].(string); kid != v.keyID {
				return nil, errors.New("unknown key id")
			}
			return v.publicKey, nil
		})
		if err != nil {
			log.Debug().Err(err).Msg("JWT parse error")
			return nil, authn.Errorf("invalid token")
		}

		if !parsed.Valid {
			return nil, authn.Errorf("token invalid")
		}

		claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
		if !ok {
			return nil, authn.Errorf("invalid claims")
		}

		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			return nil, authn.Errorf("token expired")
		}

		actorID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return nil, authn.Errorf("invalid subject")
		}

		return actorID, nil
	}, nil
}
