package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wecre8/oto/internal/infrastructure/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService() *HookTokenService {
	return NewHookTokenService(config.AuthConfig{HookSecret: testSecret, Issuer: "saleor"})
}

func TestHookTokenService_RoundTrip(t *testing.T) {
	s := newTestService()

	token, err := s.GenerateToken("storefront", time.Minute)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "storefront", claims.Subject)
	assert.Equal(t, "saleor", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestHookTokenService_ValidateToken(t *testing.T) {
	s := newTestService()

	sign := func(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, &Claims{RegisteredClaims: claims}).SignedString(key)
		require.NoError(t, err)
		return token
	}
	now := time.Now()

	tests := []struct {
		name  string
		token func(t *testing.T) string
		err   error
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
					Issuer: "saleor", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
				})
			},
			err: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
					Issuer: "saleor", NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
				})
			},
			err: ErrTokenNotYetValid,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Issuer: "someone-else"})
			},
			err: ErrInvalidIssuer,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-00"), jwt.RegisteredClaims{Issuer: "saleor"})
			},
			err: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.RegisteredClaims{Issuer: "saleor"})
			},
			err: ErrInvalidToken,
		},
		{
			name:  "garbage",
			token: func(t *testing.T) string { return "not-a-jwt" },
			err:   ErrInvalidToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ValidateToken(tt.token(t))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestHookTokenService_NoIssuerCheck(t *testing.T) {
	signer := NewHookTokenService(config.AuthConfig{HookSecret: testSecret, Issuer: "anything"})
	token, err := signer.GenerateToken("app", time.Minute)
	require.NoError(t, err)

	_, err = NewHookTokenService(config.AuthConfig{HookSecret: testSecret}).ValidateToken(token)
	assert.NoError(t, err)
}

func TestHookTokenService_MissingSecret(t *testing.T) {
	s := NewHookTokenService(config.AuthConfig{})

	_, err := s.GenerateToken("app", time.Minute)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = s.ValidateToken("x.y.z")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
