package security

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := "access-secret"
	tok, err := GenerateAccessToken(secret, 42, "bob@bobsgarage.com", true, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := ParseAccessToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id mismatch: got %d want 42", claims.UserID)
	}
	if claims.Email != "bob@bobsgarage.com" {
		t.Fatalf("email mismatch: got %q", claims.Email)
	}
	if !claims.IsAdmin {
		t.Fatalf("expected admin claim")
	}
}

func TestAccessToken_Expired(t *testing.T) {
	t.Parallel()

	secret := "access-secret"
	tok, err := GenerateAccessToken(secret, 7, "x@y.com", false, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	_, err = ParseAccessToken(tok, secret)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAccessToken("right", 7, "x@y.com", false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	_, err = ParseAccessToken(tok, "wrong")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAccessToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseAccessToken("not.a.jwt", "k")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := "refresh-secret"
	tok, hash, err := GenerateRefreshToken(secret, 9, "sess-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	if !bytes.Equal(hash, HashRefreshToken(tok)) {
		t.Fatalf("returned hash does not match HashRefreshToken")
	}

	claims, err := ParseRefreshToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseRefreshToken error: %v", err)
	}
	if claims.UserID != 9 || claims.SessionID != "sess-1" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestRefreshToken_NotValidAsAccessToken(t *testing.T) {
	t.Parallel()

	// The two artifacts are signed with different secrets; one must never
	// verify as the other.
	tok, _, err := GenerateRefreshToken("refresh-secret", 9, "sess-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}

	_, err = ParseAccessToken(tok, "access-secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
