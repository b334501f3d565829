package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func generateECKeyPair(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return privateKey
}

func createSignedToken(t *testing.T, privateKey *ecdsa.PrivateKey, kid string, claims *jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = kid
	tokenStr, err := token.SignedString(privateKey)
	require.NoError(t, err)
	return tokenStr
}

func generatePublicKeyPEM(t *testing.T, publicKey *ecdsa.PublicKey) string {
	t.Helper()
	publicKeyDER, err := x509.MarshalPKIXPublicKey(publicKey)
	require.NoError(t, err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicKeyDER}))
}

func generatePrivateKeyPEM(t *testing.T, privateKey *ecdsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalECPrivateKey(privateKey)
	require.NoError(t, err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/membership.v1.InvitationService/Get", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestNewJWTVerifierFromPEM(t *testing.T) {
	t.Run("empty public key", func(t *testing.T) {
		v, err := newJWTVerifierFromPEM("")
		require.Error(t, err)
		require.Nil(t, v)
		require.Equal(t, "JWT public key not provided", err.Error())
	})

	t.Run("invalid PEM", func(t *testing.T) {
		v, err := newJWTVerifierFromPEM("invalid pem")
		require.Error(t, err)
		require.Nil(t, v)
	})

	t.Run("valid public key PEM", func(t *testing.T) {
		privateKey := generateECKeyPair(t)

		v, err := newJWTVerifierFromPEM(generatePublicKeyPEM(t, &privateKey.PublicKey))
		require.NoError(t, err)

		kid, err := KeyID(&privateKey.PublicKey)
		require.NoError(t, err)
		require.Equal(t, kid, v.keyID)
	})
}

func TestJWTAuthFunc(t *testing.T) {
	privateKey := generateECKeyPair(t)
	kid, err := KeyID(&privateKey.PublicKey)
	require.NoError(t, err)

	authFunc, err := NewJWTAuthFunc(generatePublicKeyPEM(t, &privateKey.PublicKey))
	require.NoError(t, err)

	userID := uuid.Must(uuid.NewV7())
	now := time.Now()

	t.Run("missing bearer token is anonymous", func(t *testing.T) {
		info, err := authFunc(context.Background(), bearerRequest(""))
		require.NoError(t, err)
		require.Equal(t, uuid.Nil, info)
	})

	t.Run("valid token", func(t *testing.T) {
		token := createSignedToken(t, privateKey, kid, &jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})

		info, err := authFunc(context.Background(), bearerRequest(token))
		require.NoError(t, err)
		require.Equal(t, userID, info)
	})

	t.Run("issued token round trips", func(t *testing.T) {
		token, err := IssueToken(generatePrivateKeyPEM(t, privateKey), userID, time.Hour)
		require.NoError(t, err)

		info, err := authFunc(context.Background(), bearerRequest(token))
		require.NoError(t, err)
		require.Equal(t, userID, info)
	})

	t.Run("expired token", func(t *testing.T) {
		token := createSignedToken(t, privateKey, kid, &jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		})

		_, err := authFunc(context.Background(), bearerRequest(token))
		require.Error(t, err)
	})

	t.Run("wrong key id", func(t *testing.T) {
		token := createSignedToken(t, privateKey, "not-the-key", &jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})

		_, err := authFunc(context.Background(), bearerRequest(token))
		require.Error(t, err)
	})

	t.Run("signed by another key", func(t *testing.T) {
		other := generateECKeyPair(t)
		token := createSignedToken(t, other, kid, &jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})

		_, err := authFunc(context.Background(), bearerRequest(token))
		require.Error(t, err)
	})

	t.Run("subject is not a user id", func(t *testing.T) {
		token := createSignedToken(t, privateKey, kid, &jwt.RegisteredClaims{
			Subject:   "worker-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})

		_, err := authFunc(context.Background(), bearerRequest(token))
		require.Error(t, err)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := authFunc(context.Background(), bearerRequest("a.b.c"))
		require.Error(t, err)
	})
}

func TestHeaderAuthFunc(t *testing.T) {
	authFunc := NewHeaderAuthFunc()
	userID := uuid.Must(uuid.NewV7())

	t.Run("absent header", func(t *testing.T) {
		info, err := authFunc(context.Background(), bearerRequest(""))
		require.NoError(t, err)
		require.Equal(t, uuid.Nil, info)
	})

	t.Run("valid header", func(t *testing.T) {
		req := bearerRequest("")
		req.Header.Set(ActorHeader, userID.String())

		info, err := authFunc(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, userID, info)
	})

	t.Run("invalid header", func(t *testing.T) {
		req := bearerRequest("")
		req.Header.Set(ActorHeader, "admin")

		_, err := authFunc(context.Background(), req)
		require.Error(t, err)
	})
}

func TestActorContext(t *testing.T) {
	require.Equal(t, uuid.Nil, ActorFromContext(context.Background()))

	userID := uuid.Must(uuid.NewV7())
	ctx := WithActor(context.Background(), userID)
	require.Equal(t, userID, ActorFromContext(ctx))
}
