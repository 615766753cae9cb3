package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPasswordWithCost("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if err := VerifyPassword(hash, "correct horse"); err != nil {
		t.Errorf("expected password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "wrong horse"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPasswordWithCost("short", bcrypt.MinCost); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := NewJWTManager(JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "school-admin-api"})
	adminID := uuid.New()

	token, jti, err := manager.GenerateAccessToken(adminID, "admin@school.test")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.AdminID != adminID.String() || claims.Email != "admin@school.test" || claims.ID != jti {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestJWTManager_RejectsForeignAndExpiredTokens(t *testing.T) {
	manager := NewJWTManager(JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "school-admin-api"})
	other := NewJWTManager(JWTConfig{Secret: "other-secret", Expiry: time.Hour, Issuer: "school-admin-api"})
	expired := NewJWTManager(JWTConfig{Secret: "test-secret", Expiry: -time.Hour, Issuer: "school-admin-api"})

	foreignToken, _, _ := other.GenerateAccessToken(uuid.New(), "x@school.test")
	if _, err := manager.ValidateToken(foreignToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	expiredToken, _, _ := expired.GenerateAccessToken(uuid.New(), "x@school.test")
	if _, err := manager.ValidateToken(expiredToken); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}

	if _, err := manager.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}
