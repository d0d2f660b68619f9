package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(account *entity.Account) (string, error)
	Parse(token string) (uint, error)
}

// NewTokenService creates an HS256 token service.
func NewTokenService(secret string, ttl time.Duration) TokenService {
	return &tokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Issue signs a token whose subject is the account id.
func (s *tokenService) Issue(account *entity.Account) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(account.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperror.Internal("Failed to issue token", err)
	}
	return signed, nil
}

// Parse verifies the token's signature and expiry and returns the account id it was issued for.
func (s *tokenService) Parse(token string) (uint, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperror.Wrap(apperror.KindUnauthorized, "Token expired", err)
		}
		return 0, apperror.Wrap(apperror.KindUnauthorized, "Invalid token", err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Wrap(apperror.KindUnauthorized, "Invalid token", fmt.Errorf("bad subject %q", claims.Subject))
	}
	return uint(id), nil
}
