package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSigningSecret = "test-secret"

func mintToken(t *testing.T, secret, issuer, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func newTestValidator(t *testing.T, clock func() time.Time) *TokenValidator {
	t.Helper()
	validator, err := NewTokenValidator(TokenValidatorConfig{
		SigningSecret: []byte(testSigningSecret),
		Clock:         clock,
	})
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}
	return validator
}

func TestValidateTokenAcceptsWellFormedToken(t *testing.T) {
	now := time.Unix(1770000000, 0).UTC()
	validator := newTestValidator(t, func() time.Time { return now })

	token := mintToken(t, testSigningSecret, defaultIssuer, "ops", now.Add(time.Hour))
	subject, err := validator.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "ops" {
		t.Fatalf("unexpected subject: %q", subject)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	now := time.Unix(1770000000, 0).UTC()
	validator := newTestValidator(t, func() time.Time { return now })

	token := mintToken(t, "other-secret", defaultIssuer, "ops", now.Add(time.Hour))
	if _, err := validator.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	now := time.Unix(1770000000, 0).UTC()
	validator := newTestValidator(t, func() time.Time { return now })

	token := mintToken(t, testSigningSecret, "someone-else", "ops", now.Add(time.Hour))
	if _, err := validator.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenRejectsExpiredToken(t *testing.T) {
	now := time.Unix(1770000000, 0).UTC()
	validator := newTestValidator(t, func() time.Time { return now })

	token := mintToken(t, testSigningSecret, defaultIssuer, "ops", now.Add(-time.Minute))
	if _, err := validator.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateTokenRejectsMissingSubject(t *testing.T) {
	now := time.Unix(1770000000, 0).UTC()
	validator := newTestValidator(t, func() time.Time { return now })

	token := mintToken(t, testSigningSecret, defaultIssuer, "", now.Add(time.Hour))
	if _, err := validator.ValidateToken(token); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}

func TestValidateRequestRequiresBearerHeader(t *testing.T) {
	now := time.Unix(1770000000, 0).UTC()
	validator := newTestValidator(t, func() time.Time { return now })

	request, _ := http.NewRequest(http.MethodGet, "/admin/submissions", http.NoBody)
	if _, err := validator.ValidateRequest(request); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}

	request.Header.Set("Authorization", "Bearer "+mintToken(t, testSigningSecret, defaultIssuer, "ops", now.Add(time.Hour)))
	if _, err := validator.ValidateRequest(request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
