package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims represents the marketplace JWT claims. Subject carries the
// member's public UUID; the numeric DB id never leaves the server.
type Claims struct {
	jwt.RegisteredClaims
	MemberUUID string `json:"member_uuid"`
	Nickname   string `json:"nickname"`
	Provider   string `json:"provider"`
	Type       string `json:"type"` // "access" or "refresh"
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	AccessExpiresAt  int64  `json:"accessExpiresAt"`
	RefreshExpiresAt int64  `json:"refreshExpiresAt"`
}

// Manager signs and validates marketplace tokens.
type Manager struct {
	secret          []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
	issuer          string

	// In-memory revocation store keyed by member UUID. Entries expire
	// with the refresh window, after which the tokens are dead anyway.
	revoked map[string]time.Time
	mu      sync.RWMutex
}

// NewManager creates a new JWT manager signing with HMAC-SHA256.
func NewManager(secret string, accessDuration, refreshDuration time.Duration, issuer string) *Manager {
	return &Manager{
		secret:          []byte(secret),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		issuer:          issuer,
		revoked:         make(map[string]time.Time),
	}
}

// GeneratePair creates an access and refresh token for a member.
func (m *Manager) GeneratePair(memberUUID, nickname, provider string) (*TokenPair, error) {
	now := time.Now()

	accessExp := now.Add(m.accessDuration)
	access, err := m.sign(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   memberUUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
		MemberUUID: memberUUID,
		Nickname:   nickname,
		Provider:   provider,
		Type:       TypeAccess,
	})
	if err != nil {
		return nil, err
	}

	refreshExp := now.Add(m.refreshDuration)
	refresh, err := m.sign(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   memberUUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
		MemberUUID: memberUUID,
		Type:       TypeRefresh,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp.Unix(),
		RefreshExpiresAt: refreshExp.Unix(),
	}, nil
}

// Validate parses a token and returns its claims.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	m.mu.RLock()
	_, revoked := m.revoked[claims.MemberUUID]
	m.mu.RUnlock()
	if revoked {
		return nil, ErrRevokedToken
	}

	return claims, nil
}

// Refresh issues a new token pair from a valid refresh token.
func (m *Manager) Refresh(refreshToken, nickname, provider string) (*TokenPair, error) {
	claims, err := m.Validate(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != TypeRefresh {
		return nil, ErrInvalidToken
	}
	return m.GeneratePair(claims.MemberUUID, nickname, provider)
}

// Revoke invalidates all outstanding tokens for a member (logout).
func (m *Manager) Revoke(memberUUID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[memberUUID] = time.Now().Add(m.refreshDuration)
}

// Unrevoke lifts a revocation, typically on the next successful login.
func (m *Manager) Unrevoke(memberUUID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.revoked, memberUUID)
}

// CleanupRevoked removes revocation entries past the refresh window.
func (m *Manager) CleanupRevoked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for uuid, expiry := range m.revoked {
		if now.After(expiry) {
			delete(m.revoked, uuid)
		}
	}
}

func (m *Manager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
