package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

func TestLogin(t *testing.T) {
	store := memory.NewStore()
	cfg := config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}
	users := NewUserService(cfg, store.Users())
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, UserCreateInput{Name: "Ana", Login: "ana", Password: "clave", Active: true}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := users.CreateUser(ctx, UserCreateInput{Name: "Beto", Login: "beto", Password: "clave"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := users.CreateUser(ctx, UserCreateInput{Name: "Otra Ana", Login: "ana"}); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("duplicate login err = %v", err)
	}

	svc := NewAuthService(cfg, store.Users())
	result, err := svc.Login(ctx, "ana", "clave")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := svc.TokenManager().ParseToken(result.Token)
	if err != nil || claims.UserID != result.User.ID {
		t.Fatalf("claims = %+v, err = %v", claims, err)
	}

	tests := []struct {
		name     string
		login    string
		password string
		status   int
	}{
		{"wrong password", "ana", "nope", http.StatusUnauthorized},
		{"inactive user", "beto", "clave", http.StatusUnauthorized},
		{"unknown login", "carla", "clave", http.StatusUnauthorized},
		{"system user has no password", "__system__", "x", http.StatusUnauthorized},
		{"missing password", "ana", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.login, tt.password); statusOf(err) != tt.status {
				t.Fatalf("err = %v, want status %d", err, tt.status)
			}
		})
	}
}

func TestListAssignees(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	users := NewUserService(config.AuthConfig{BcryptCost: 4}, store.Users())
	for _, in := range []UserCreateInput{
		{Name: "Zoe", Login: "zoe", Active: true},
		{Name: "Ana", Login: "ana", Active: true},
		{Name: "Inactiva", Login: "off"},
	} {
		if _, err := users.CreateUser(ctx, in); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	svc := NewAssignmentService(AssignmentDependencies{UserRepo: store.Users()})
	active, err := svc.ListAssignees(ctx, true, 0)
	if err != nil {
		t.Fatalf("ListAssignees: %v", err)
	}
	if len(active) != 2 || active[0].Name != "Ana" || active[1].Name != "Zoe" {
		t.Fatalf("active = %+v", active)
	}
	all, _ := svc.ListAssignees(ctx, false, 2)
	if len(all) != 2 {
		t.Fatalf("limit not applied: %d", len(all))
	}
}
