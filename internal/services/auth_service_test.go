package services

import (
	"testing"

	"github.com/stackroom/backend/internal/config"
	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/internal/utils"
	"github.com/stackroom/backend/pkg/response"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:             "test-secret",
		AccessExpireHours:  1,
		RefreshExpireHours: 24,
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	cfg := testJWTConfig()
	utils.SetJWTSecret(cfg.Secret)
	auth := NewAuthService(db, cfg)

	user, err := auth.Register(&RegisterRequest{
		Email:    "Ada@Example.com",
		Username: "ada",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email should be lowercased, got %q", user.Email)
	}
	if user.PasswordHash == "hunter22" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	result, err := auth.Login(&LoginRequest{Email: "ada@example.com", Password: "hunter22"}, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("login should issue both tokens")
	}

	claims, err := utils.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims.UserID = %d, expected %d", claims.UserID, user.ID)
	}

	if _, err := auth.Login(&LoginRequest{Email: "ada@example.com", Password: "wrong"}, "", ""); err == nil {
		t.Error("wrong password should fail")
	}
	if _, err := auth.Login(&LoginRequest{Email: "nobody@example.com", Password: "x"}, "", ""); err == nil {
		t.Error("unknown email should fail")
	}
}

func TestAuthService_DuplicateRegistrationConflicts(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, testJWTConfig())

	if _, err := auth.Register(&RegisterRequest{Email: "a@example.com", Username: "abc", Password: "secret1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := auth.Register(&RegisterRequest{Email: "a@example.com", Username: "other", Password: "secret1"}); !response.IsConflict(err) {
		t.Errorf("duplicate email: expected Conflict, got %v", err)
	}
	if _, err := auth.Register(&RegisterRequest{Email: "b@example.com", Username: "abc", Password: "secret1"}); !response.IsConflict(err) {
		t.Errorf("duplicate username: expected Conflict, got %v", err)
	}
}

func TestAuthService_RefreshRotation(t *testing.T) {
	db := newTestDB(t)
	cfg := testJWTConfig()
	utils.SetJWTSecret(cfg.Secret)
	auth := NewAuthService(db, cfg)

	if _, err := auth.Register(&RegisterRequest{Email: "r@example.com", Username: "rot", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := auth.Login(&LoginRequest{Email: "r@example.com", Password: "secret1"}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := auth.Refresh(login.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("rotation must issue a new refresh token")
	}

	// The old token is revoked by the rotation.
	if _, err := auth.Refresh(login.RefreshToken, "", ""); err == nil {
		t.Error("reusing a rotated refresh token should fail")
	}

	// The new token still works.
	if _, err := auth.Refresh(refreshed.RefreshToken, "", ""); err != nil {
		t.Errorf("new refresh token should work, got %v", err)
	}
}

func TestAuthService_RevokeOnLogout(t *testing.T) {
	db := newTestDB(t)
	cfg := testJWTConfig()
	utils.SetJWTSecret(cfg.Secret)
	auth := NewAuthService(db, cfg)

	auth.Register(&RegisterRequest{Email: "l@example.com", Username: "out", Password: "secret1"})
	login, err := auth.Login(&LoginRequest{Email: "l@example.com", Password: "secret1"}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := auth.RevokeRefreshToken(login.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := auth.Refresh(login.RefreshToken, "", ""); err == nil {
		t.Error("revoked token should not refresh")
	}

	// Revoking garbage is harmless.
	if err := auth.RevokeRefreshToken("does-not-exist"); err != nil {
		t.Errorf("revoking unknown token: %v", err)
	}
}

func TestAuthService_ChangePasswordRevokesTokens(t *testing.T) {
	db := newTestDB(t)
	cfg := testJWTConfig()
	utils.SetJWTSecret(cfg.Secret)
	auth := NewAuthService(db, cfg)

	user, _ := auth.Register(&RegisterRequest{Email: "c@example.com", Username: "chg", Password: "oldpass1"})
	login, err := auth.Login(&LoginRequest{Email: "c@example.com", Password: "oldpass1"}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := auth.ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newpass1"}); err == nil {
		t.Error("wrong old password should fail")
	}
	if err := auth.ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "oldpass1", NewPassword: "newpass1"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := auth.Login(&LoginRequest{Email: "c@example.com", Password: "newpass1"}, "", ""); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, err := auth.Refresh(login.RefreshToken, "", ""); err == nil {
		t.Error("old refresh tokens should be revoked after password change")
	}

	var active int64
	db.Model(&models.RefreshToken{}).Where("user_id = ? AND revoked_at IS NULL", user.ID).Count(&active)
	if active != 1 {
		t.Errorf("expected only the post-change login token active, got %d", active)
	}
}
