// Package auth guards the host role. The broadcast host proves itself with
// a shared secret and receives a short-lived JWT that the signaling layer
// accepts on register-host. Callers never authenticate.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the host secret doesn't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDisabled is returned when no host secret is configured.
	ErrDisabled = errors.New("host auth disabled")
)

const bcryptCost = 10

// Service issues and validates host tokens.
type Service struct {
	secretHash string // empty means host auth is off
	jwtConfig  *JWTConfig
}

// NewService builds the host auth service. hostSecret may be a bcrypt hash
// (kept as-is) or a plaintext secret (hashed at startup); an empty value
// disables host auth entirely.
func NewService(hostSecret string, jwtConfig *JWTConfig) (*Service, error) {
	s := &Service{jwtConfig: jwtConfig}
	if hostSecret == "" {
		return s, nil
	}

	if strings.HasPrefix(hostSecret, "$2a$") || strings.HasPrefix(hostSecret, "$2b$") {
		s.secretHash = hostSecret
		return s, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(hostSecret), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash host secret: %w", err)
	}
	s.secretHash = string(hash)
	return s, nil
}

// Enabled reports whether host registration requires a token.
func (s *Service) Enabled() bool {
	return s.secretHash != ""
}

// Login exchanges the host secret for a token.
func (s *Service) Login(secret string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.secretHash), []byte(secret)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateHostToken(s.jwtConfig)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// ValidateHostToken checks a token presented with register-host.
func (s *Service) ValidateHostToken(token string) error {
	if !s.Enabled() {
		return nil
	}
	if _, err := ParseHostToken(s.jwtConfig, token); err != nil {
		return err
	}
	return nil
}
