package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sahilchouksey/school-admin-api/database/databasetest"
	"github.com/sahilchouksey/school-admin-api/utils/auth"
)

func newAdminService(t *testing.T) *AdminService {
	t.Helper()
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "school-admin-api",
	})
	return NewAdminService(databasetest.Open(t), jwtManager)
}

func TestAdminRegisterAndLogin(t *testing.T) {
	svc := newAdminService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterAdminInput{
		Name:     "Root",
		Email:    "root@school.test",
		Password: "correcthorse1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.AccessToken == "" || registered.TokenType != "Bearer" || registered.ExpiresIn != 3600 {
		t.Errorf("unexpected auth result %+v", registered)
	}

	_, err = svc.Register(ctx, RegisterAdminInput{Name: "Again", Email: "root@school.test", Password: "correcthorse1"})
	assertKind(t, err, ErrConflict)

	loggedIn, err := svc.Login(ctx, LoginInput{Email: "root@school.test", Password: "correcthorse1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.Admin.ID != registered.Admin.ID {
		t.Errorf("login returned a different admin")
	}

	_, err = svc.Login(ctx, LoginInput{Email: "root@school.test", Password: "wrongpassword"})
	assertKind(t, err, ErrUnauthorized)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@school.test", Password: "whatever1"})
	assertKind(t, err, ErrUnauthorized)

	admin, err := svc.GetByID(ctx, registered.Admin.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if admin.Email != "root@school.test" {
		t.Errorf("unexpected admin %+v", admin)
	}
}

func TestAdminRegister_Validation(t *testing.T) {
	svc := newAdminService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterAdminInput
	}{
		{"missing name", RegisterAdminInput{Email: "a@school.test", Password: "longenough1"}},
		{"bad email", RegisterAdminInput{Name: "A", Email: "a", Password: "longenough1"}},
		{"short password", RegisterAdminInput{Name: "A", Email: "a@school.test", Password: "short"}},
		{"password without letters", RegisterAdminInput{Name: "A", Email: "a@school.test", Password: "123456789"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			assertKind(t, err, ErrValidation)
		})
	}
}
