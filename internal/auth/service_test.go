package auth

import (
	"errors"
	"testing"
	"time"
)

func testJWTConfig() *JWTConfig {
	return &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test-host",
		TTL:      time.Hour,
	}
}

func TestLoginAndValidate(t *testing.T) {
	svc, err := NewService("open-sesame", testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if !svc.Enabled() {
		t.Fatal("expected host auth enabled")
	}

	token, err := svc.Login("open-sesame")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.ValidateHostToken(token); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	svc, err := NewService("open-sesame", testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Login("wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateRejectsGarbageToken(t *testing.T) {
	svc, err := NewService("open-sesame", testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.ValidateHostToken("not-a-token"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidateRejectsForeignToken(t *testing.T) {
	svc, err := NewService("open-sesame", testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	otherCfg := testJWTConfig()
	otherCfg.Secret = []byte("a-different-secret")
	token, err := GenerateHostToken(otherCfg)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if err := svc.ValidateHostToken(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestDisabledService(t *testing.T) {
	svc, err := NewService("", testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.Enabled() {
		t.Fatal("expected host auth disabled")
	}

	if _, err := svc.Login("anything"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	// With auth off every token, including none, passes.
	if err := svc.ValidateHostToken(""); err != nil {
		t.Fatalf("disabled service must accept any token, got %v", err)
	}
}

func TestPrehashedSecretAccepted(t *testing.T) {
	// bcrypt hash of "open-sesame" is accepted verbatim.
	svc, err := NewService("open-sesame", testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	hashed := svc.secretHash

	svc2, err := NewService(hashed, testJWTConfig())
	if err != nil {
		t.Fatalf("new service from hash: %v", err)
	}
	if _, err := svc2.Login("open-sesame"); err != nil {
		t.Fatalf("login against pre-hashed secret: %v", err)
	}
}
