package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lendbook/lendbook/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AdminUser:       "admin",
		AdminPassword:   "s3cret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(testConfig(), NewMemoryRepository())
	if err := svc.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	return svc
}

func TestLoginIssuesVerifiableTokens(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.Login(context.Background(), "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("token pair incomplete")
	}

	if _, err := svc.Verify(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("verify access token: %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Login(context.Background(), "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password should fail with ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user should fail with ErrInvalidCredentials, got %v", err)
	}
}

func TestEnsureAdminKeepsExistingHash(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(testConfig(), repo)

	if err := svc.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	first, err := repo.FindByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}

	if err := svc.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("second ensure admin: %v", err)
	}
	second, err := repo.FindByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("find admin again: %v", err)
	}
	if first.PasswordHash != second.PasswordHash {
		t.Fatal("seeding twice must not rotate the stored hash")
	}
}

func TestRefreshAndLogoutVersioning(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.Login(context.Background(), "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access, _, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	userID, err := svc.Verify(context.Background(), access)
	if err != nil {
		t.Fatalf("verify refreshed token: %v", err)
	}

	if err := svc.Logout(context.Background(), userID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Verify(context.Background(), pair.AccessToken); err == nil {
		t.Fatal("access token should be invalid after logout")
	}
	if _, _, err := svc.Refresh(context.Background(), pair.RefreshToken); err == nil {
		t.Fatal("refresh token should be invalid after logout")
	}
}

func TestVerifyRejectsWrongSecretAndGarbage(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.Login(context.Background(), "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// A refresh token is signed with the refresh secret and must not pass as
	// an access token.
	if _, err := svc.Verify(context.Background(), pair.RefreshToken); err == nil {
		t.Fatal("refresh token must not verify as access token")
	}
	if _, err := svc.Verify(context.Background(), "not.a.token"); err == nil {
		t.Fatal("garbage must not verify")
	}
}
