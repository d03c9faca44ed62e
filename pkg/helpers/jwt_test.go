package helpers

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewSessionManager("secret", time.Hour)

	token, exp, err := m.Generate("u-1", "sid-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", exp)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u-1" || claims.SessionID != "sid-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, _, err := NewSessionManager("secret-a", time.Hour).Generate("u-1", "sid-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewSessionManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatal("expected parse to fail under a different secret")
	}
}

func TestSessionTokenExpired(t *testing.T) {
	m := NewSessionManager("secret", -time.Minute)
	token, _, err := m.Generate("u-1", "sid-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Fatal("expected parse to reject an expired token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "password123" {
		t.Fatal("password not hashed")
	}
	if !CompareHashAndPassword(hash, "password123") {
		t.Fatal("hash does not verify the original password")
	}
	if CompareHashAndPassword(hash, "wrongwrong") {
		t.Fatal("hash verified a wrong password")
	}
}
