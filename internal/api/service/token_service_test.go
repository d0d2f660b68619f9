package service

import (
	"testing"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue(&entity.Account{ID: 42})
	require.NoError(t, err)

	id, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour).(*tokenService)
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(&entity.Account{ID: 1})
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = svc.Parse(token)
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	assert.Equal(t, "Token expired", apperror.Message(err))
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	other, err := NewTokenService("other-secret", time.Hour).Issue(&entity.Account{ID: 1})
	require.NoError(t, err)
	_, err = svc.Parse(other)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Parse(unsigned)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.Parse(noExpiry)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}
