package service_test

import (
	"context"
	"testing"

	"github.com/civicdesk/issue-service/internal/config"
	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/service"
)

func newAuthService(profiles *fakeProfileRepo) *service.AuthService {
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 5
	cfg.Auth.BcryptCost = 4
	return service.NewAuthService(cfg, profiles)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo()
	svc := newAuthService(profiles)

	profile, token, _, err := svc.RegisterCitizen(ctx, "Ada Reporter", "Ada@Example.com", "hunter22", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if profile.Role != domain.RoleCitizen {
		t.Fatalf("registration always yields citizen, got %s", profile.Role)
	}
	if profile.Email != "ada@example.com" {
		t.Fatalf("email must be normalized, got %s", profile.Email)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.SubjectID != profile.ID || claims.Role != domain.RoleCitizen {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, _, _, err := svc.RegisterCitizen(ctx, "Ada Again", "ada@example.com", "other", nil); err == nil {
		t.Fatalf("duplicate email must be rejected")
	}

	if _, _, _, err := svc.Login(ctx, "ada@example.com", "hunter22"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); err == nil {
		t.Fatalf("wrong password must be rejected")
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "hunter22"); err == nil {
		t.Fatalf("unknown email must be rejected")
	}
}
