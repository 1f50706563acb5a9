package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func registerInput() RegisterInput {
	return RegisterInput{
		Name:         "Ana",
		Surname:      "Lopez",
		Phone:        "600111222",
		Email:        "Ana@Example.com",
		Username:     "12345678",
		DocumentType: domain.DocumentDNI,
		Password:     "secret1",
	}
}

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, 24*time.Hour, 7*24*time.Hour)
	return svc, users
}

func TestRegisterNormalizes(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %q, want user", user.Role)
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked out of Register")
	}
}

func TestRegisterPassportUppercased(t *testing.T) {
	svc, _ := newAuthFixture(t)

	input := registerInput()
	input.DocumentType = domain.DocumentPassport
	input.Username = "ab123cd"
	user, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "AB123CD" {
		t.Errorf("username = %q, want uppercased passport number", user.Username)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing name", func(in *RegisterInput) { in.Name = "" }},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }},
		{"bad document type", func(in *RegisterInput) { in.DocumentType = "cedula" }},
		{"dni with letters", func(in *RegisterInput) { in.Username = "1234A678" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := registerInput()
			tc.mutate(&input)
			_, err := svc.Register(ctx, input)
			var validation ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestRegisterConflictNamesField(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatalf("seed registration: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"duplicate email", func(in *RegisterInput) { in.Phone = "611111111"; in.Username = "87654321" }, "email"},
		{"duplicate phone", func(in *RegisterInput) { in.Email = "b@example.com"; in.Username = "87654321" }, "phone"},
		{"duplicate username", func(in *RegisterInput) { in.Email = "b@example.com"; in.Phone = "611111111" }, "username"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := registerInput()
			tc.mutate(&input)
			_, err := svc.Register(ctx, input)
			var fieldErr *repository.FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fieldErr.Field != tc.field {
				t.Errorf("conflicting field = %q, want %q", fieldErr.Field, tc.field)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, expiry, user, err := svc.Login(ctx, "ana@example.com", "secret1", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if expiry != 24*time.Hour {
		t.Errorf("expiry = %v, want 24h", expiry)
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked out of Login")
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || claims.Role != domain.RoleUser {
		t.Errorf("claims = %+v, want id/email/role of the user", claims)
	}

	stored, _ := users.GetByEmail(ctx, "ana@example.com")
	if stored.LastLogin == nil {
		t.Error("last_login was not touched")
	}
}

func TestLoginRememberExtendsExpiry(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, expiry, _, err := svc.Login(ctx, "ana@example.com", "secret1", true)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if expiry != 7*24*time.Hour {
		t.Errorf("expiry = %v, want 168h", expiry)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "ana@example.com", "wrong", false); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("wrong password: expected ErrAuthenticationFailed, got %v", err)
	}
	// Unknown email answers identically so accounts cannot be enumerated.
	if _, _, _, err := svc.Login(ctx, "ghost@example.com", "secret1", false); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("unknown email: expected ErrAuthenticationFailed, got %v", err)
	}
}
