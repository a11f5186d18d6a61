// Copyright (c) 2026 PMR Atlas. All rights reserved.

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carolinavmo/pmr-atlas/internal/platform/sec"
)

func signToken(t *testing.T, key *rsa.PrivateKey, issuer string, expiresIn time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
		UserID:   "u-1",
		Username: "ana",
		Name:     "Dr. Ana",
		Role:     string(sec.RoleAdmin),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

/*
TestTokenVerifier checks signature, issuer and expiry handling.
*/
func TestTokenVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := sec.NewTokenVerifierFromKey(&key.PublicKey, "pmr-atlas.app")

	t.Run("valid", func(t *testing.T) {
		claims, err := verifier.VerifyToken(signToken(t, key, "pmr-atlas.app", time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
		assert.Equal(t, "Dr. Ana", claims.Name)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("wrong_issuer", func(t *testing.T) {
		_, err := verifier.VerifyToken(signToken(t, key, "elsewhere", time.Hour))
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := verifier.VerifyToken(signToken(t, key, "pmr-atlas.app", -time.Minute))
		assert.Error(t, err)
	})

	t.Run("foreign_key", func(t *testing.T) {
		_, err := verifier.VerifyToken(signToken(t, otherKey, "pmr-atlas.app", time.Hour))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.VerifyToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleEditor))
	assert.True(t, sec.RoleEditor.AtLeast(sec.RoleEditor))
	assert.False(t, sec.RoleViewer.AtLeast(sec.RoleEditor))
	assert.False(t, sec.UserRole("guest").AtLeast(sec.RoleViewer))
}
