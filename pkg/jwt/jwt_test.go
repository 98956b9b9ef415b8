package jwt

import (
	"errors"
	"testing"
	"time"
)

func newTestManager() *Manager {
	return NewManager("test-secret", time.Hour, 24*time.Hour, "ac-trading")
}

func TestGenerateAndValidatePair(t *testing.T) {
	m := newTestManager()

	pair, err := m.GeneratePair("uuid-1", "Tom Nook", "GOOGLE")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty token in pair")
	}
	if pair.AccessExpiresAt >= pair.RefreshExpiresAt {
		t.Fatal("access token should expire before refresh token")
	}

	claims, err := m.Validate(pair.AccessToken)
	if err != nil {
		t.Fatalf("Validate(access): %v", err)
	}
	if claims.MemberUUID != "uuid-1" || claims.Nickname != "Tom Nook" ||
		claims.Provider != "GOOGLE" || claims.Type != TypeAccess {
		t.Fatalf("unexpected access claims %+v", claims)
	}

	claims, err = m.Validate(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Validate(refresh): %v", err)
	}
	if claims.Type != TypeRefresh {
		t.Fatalf("refresh token type = %q", claims.Type)
	}
	// The refresh token carries identity only through the UUID.
	if claims.Nickname != "" || claims.Provider != "" {
		t.Fatalf("refresh token leaked profile claims %+v", claims)
	}
}

func TestValidateRejectsGarbageAndWrongKey(t *testing.T) {
	m := newTestManager()

	if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token error = %v, want ErrInvalidToken", err)
	}

	other := NewManager("different-secret", time.Hour, 24*time.Hour, "ac-trading")
	pair, err := other.GeneratePair("uuid-1", "Tom", "GOOGLE")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if _, err := m.Validate(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("cross-key token error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, -time.Minute, "ac-trading")
	pair, err := m.GeneratePair("uuid-1", "Tom", "GOOGLE")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if _, err := m.Validate(pair.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expired token error = %v, want ErrExpiredToken", err)
	}
}

func TestRefresh(t *testing.T) {
	m := newTestManager()
	pair, err := m.GeneratePair("uuid-1", "Tom", "GOOGLE")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	fresh, err := m.Refresh(pair.RefreshToken, "Tommy", "GOOGLE")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	claims, err := m.Validate(fresh.AccessToken)
	if err != nil {
		t.Fatalf("Validate(refreshed access): %v", err)
	}
	if claims.MemberUUID != "uuid-1" || claims.Nickname != "Tommy" {
		t.Fatalf("refreshed claims %+v", claims)
	}

	// An access token is not accepted where a refresh token is expected.
	if _, err := m.Refresh(pair.AccessToken, "Tom", "GOOGLE"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Refresh(access token) = %v, want ErrInvalidToken", err)
	}
}

func TestRevocation(t *testing.T) {
	m := newTestManager()
	pair, err := m.GeneratePair("uuid-1", "Tom", "GOOGLE")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	m.Revoke("uuid-1")
	if _, err := m.Validate(pair.AccessToken); !errors.Is(err, ErrRevokedToken) {
		t.Fatalf("revoked access error = %v, want ErrRevokedToken", err)
	}
	if _, err := m.Refresh(pair.RefreshToken, "Tom", "GOOGLE"); !errors.Is(err, ErrRevokedToken) {
		t.Fatalf("revoked refresh error = %v, want ErrRevokedToken", err)
	}

	// Other members are unaffected.
	otherPair, err := m.GeneratePair("uuid-2", "Isabelle", "KAKAO")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if _, err := m.Validate(otherPair.AccessToken); err != nil {
		t.Fatalf("unrelated member revoked: %v", err)
	}

	m.Unrevoke("uuid-1")
	if _, err := m.Validate(pair.AccessToken); err != nil {
		t.Fatalf("Validate after Unrevoke: %v", err)
	}
}

func TestCleanupRevoked(t *testing.T) {
	m := NewManager("test-secret", time.Hour, -time.Minute, "ac-trading")
	m.Revoke("uuid-1") // entry expires immediately with a negative window
	m.CleanupRevoked()

	m.mu.RLock()
	_, still := m.revoked["uuid-1"]
	m.mu.RUnlock()
	if still {
		t.Fatal("expired revocation survived cleanup")
	}
}
