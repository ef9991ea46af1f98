package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
)

func TestUserContext(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatal("empty context has a user")
	}
	ctx := WithUser(context.Background(), "u1")
	if id, ok := UserFromContext(ctx); !ok || id != "u1" {
		t.Fatalf("UserFromContext = %q %v", id, ok)
	}
}

func TestIssueAndParse(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := IssueToken("u1", secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := ParseToken(tok, secret)
	if err != nil || sub != "u1" {
		t.Fatalf("ParseToken = %q %v", sub, err)
	}

	if _, err := ParseToken(tok, []byte("other")); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("wrong secret: err = %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := IssueToken("u1", secret, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(tok, secret); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("expired: err = %v", err)
	}
}

func TestParseToken_SubFallback(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "ext-42"}).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	if sub, err := ParseToken(tok, secret); err != nil || sub != "ext-42" {
		t.Errorf("ParseToken = %q %v", sub, err)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u1"}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(tok, []byte("s3cret")); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("HS512: err = %v", err)
	}
}
