package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielstephany/kanban-api/utils"
)

func newUserFixture() (*UserService, *fakeUserStore) {
	users := newFakeUserStore()
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	return NewUserService(users, tokens, map[string]bool{"password123": true}), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newUserFixture()

	user, token, err := svc.Register(context.Background(), "Ada", "Lovelace", "ada@example.com", "difference engine", "difference engine")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatal("register returned no token")
	}
	if user.ID.IsZero() || user.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("difference engine")); err != nil {
		t.Fatal("stored password is not a hash of the submitted one")
	}

	got, token, err := svc.Login(context.Background(), "ada@example.com", "difference engine")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || got.ID != user.ID {
		t.Fatalf("login returned wrong user or empty token: %+v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "one", "two"); statusCode(t, err) != 422 {
		t.Fatal("expected 422 for mismatched passwords")
	}
	if _, _, err := svc.Register(ctx, "", "Lovelace", "ada@example.com", "secretive", "secretive"); statusCode(t, err) != 422 {
		t.Fatal("expected 422 for missing first name")
	}
	if _, _, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "password123", "password123"); statusCode(t, err) != 422 {
		t.Fatal("expected 422 for blacklisted password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "secretive", "secretive"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "Other", "Person", "ada@example.com", "different", "different"); statusCode(t, err) != 409 {
		t.Fatal("expected 409 for duplicate email")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "secretive", "secretive"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); statusCode(t, err) != 401 {
		t.Fatal("expected 401 for wrong password")
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "secretive"); statusCode(t, err) != 401 {
		t.Fatal("expected 401 for unknown email")
	}
	if _, _, err := svc.Login(ctx, "", ""); statusCode(t, err) != 422 {
		t.Fatal("expected 422 for empty credentials")
	}
}

func TestGetByID(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "secretive", "secretive")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.GetByID(ctx, user.ID.Hex())
	if err != nil || got.Email != "ada@example.com" {
		t.Fatalf("get by id: %v %+v", err, got)
	}

	if _, err := svc.GetByID(ctx, "not-a-hex-id"); statusCode(t, err) != 401 {
		t.Fatal("expected 401 for malformed id")
	}
	if _, err := svc.GetByID(ctx, primitive.NewObjectID().Hex()); statusCode(t, err) != 401 {
		t.Fatal("expected 401 for unknown id")
	}
}
