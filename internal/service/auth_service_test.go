package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/eduportal/assessment-api/internal/apperror"
	"github.com/eduportal/assessment-api/internal/model"
)

func seedUser(t *testing.T, users *stubUserRepo, email, password string, role model.Role) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &model.User{Email: email, PasswordHash: string(hash), Role: role, StudentID: "s1"}
	if _, err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLoginAndValidateToken(t *testing.T) {
	users := &stubUserRepo{}
	seedUser(t, users, "admin@example.edu", "hunter22", model.RoleAdmin)
	svc := NewAuthService(users, "test-secret")

	resp, err := svc.Login(context.Background(), "admin@example.edu", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if resp.Token == "" || resp.User == nil {
		t.Fatalf("incomplete login response: %+v", resp)
	}

	claims, err := svc.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if claims.Role != model.RoleAdmin || claims.Email != "admin@example.edu" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.StudentID != "s1" {
		t.Fatalf("student link missing from claims: %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := &stubUserRepo{}
	seedUser(t, users, "admin@example.edu", "hunter22", model.RoleAdmin)
	svc := NewAuthService(users, "test-secret")

	_, err := svc.Login(context.Background(), "admin@example.edu", "wrong")
	if apperror.KindOf(err) != apperror.KindNotAuthenticated {
		t.Fatalf("expected NotAuthenticated, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(&stubUserRepo{}, "test-secret")
	_, err := svc.Login(context.Background(), "nobody@example.edu", "x")
	if apperror.KindOf(err) != apperror.KindNotAuthenticated {
		t.Fatalf("expected NotAuthenticated, got %v", err)
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	users := &stubUserRepo{}
	user := seedUser(t, users, "admin@example.edu", "hunter22", model.RoleAdmin)

	other := NewAuthService(users, "other-secret")
	token, err := other.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	svc := NewAuthService(users, "test-secret")
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}
