package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when an API client fails authentication.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 24 * time.Hour

// IssueToken authenticates an API client and returns a signed JWT.
func (s *Service) IssueToken(clientID, secret string) (string, error) {
	if s.config.APIClientID == "" || s.config.APIClientSecretHash == "" {
		return "", ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(clientID), []byte(s.config.APIClientID)) != 1 {
		return "", ErrInvalidCredentials
	}

	// Verify secret
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.APIClientSecretHash), []byte(secret)); err != nil {
		return "", ErrInvalidCredentials
	}

	// Generate JWT
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("Token issued for client: %s", clientID)
	return tokenString, nil
}
