package security_test

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/elemahana/farm-api/internal/domain"
	"github.com/elemahana/farm-api/internal/security"
)

const secret = "test_secret_key"

func testUser() *domain.User {
	return &domain.User{
		ID:    primitive.NewObjectID(),
		Email: "u@example.com",
		Roles: []domain.Role{domain.RoleUser, domain.RoleManager},
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	u := testUser()
	tok, err := security.MakeAccess(secret, u, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	c, err := security.ParseAccess(secret, tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UID != u.ID.Hex() || c.Subject != u.ID.Hex() {
		t.Fatalf("subject mismatch: %#v", c)
	}
	if c.Email != u.Email {
		t.Fatalf("email mismatch: %q", c.Email)
	}
	if len(c.Roles) != 2 || c.Roles[0] != domain.RoleUser || c.Roles[1] != domain.RoleManager {
		t.Fatalf("roles mismatch: %v", c.Roles)
	}
}

func TestAccessToken_Expired(t *testing.T) {
	tok, err := security.MakeAccess(secret, testUser(), -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseAccess(secret, tok); !errors.Is(err, security.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestAccessToken_WrongSecret(t *testing.T) {
	tok, err := security.MakeAccess(secret, testUser(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseAccess("another_secret", tok); !errors.Is(err, security.ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid, got %v", err)
	}
}

func TestAccessToken_Malformed(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := security.ParseAccess(secret, tok); !errors.Is(err, security.ErrTokenInvalid) {
			t.Fatalf("token %q: want ErrTokenInvalid, got %v", tok, err)
		}
	}
}
