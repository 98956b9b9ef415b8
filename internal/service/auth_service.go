package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/identity"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/jwt"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// authServiceImpl implements AuthService.
type authServiceImpl struct {
	members  repository.MemberRepository
	provider identity.Provider
	tokens   *jwt.Manager
}

// NewAuthService creates a new auth service.
func NewAuthService(members repository.MemberRepository, provider identity.Provider, tokens *jwt.Manager) AuthService {
	return &authServiceImpl{
		members:  members,
		provider: provider,
		tokens:   tokens,
	}
}

// Login exchanges a social authorization code, creating the member on
// first login.
func (s *authServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	l := log.Ctx(ctx)

	profile, err := s.provider.Exchange(ctx, req.Provider, req.Code)
	if err != nil {
		return nil, err
	}

	member, err := s.members.GetByProviderSubject(ctx, profile.Provider, profile.Subject)
	if errors.Is(err, repository.ErrMemberNotFound) {
		member = domain.NewMember(uuid.New().String(), profile.Provider, profile.Subject, profile.Email)
		if err := s.members.Create(ctx, member); err != nil {
			return nil, err
		}
		l.Info().Str(log.FieldMemberUUID, member.UUID).Str("provider", profile.Provider).Msg("member registered")
	} else if err != nil {
		return nil, err
	}

	// A fresh login lifts any logout revocation.
	s.tokens.Unrevoke(member.UUID)

	pair, err := s.tokens.GeneratePair(member.UUID, member.Nickname, member.Provider)
	if err != nil {
		l.Error().Err(err).Str(log.FieldMemberUUID, member.UUID).Msg("failed to generate tokens after login")
		return nil, err
	}

	return &domain.LoginResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		Member:           member.ToResponse(),
	}, nil
}

// Refresh rotates the token pair from a valid refresh token.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != jwt.TypeRefresh {
		return nil, jwt.ErrInvalidToken
	}

	member, err := s.members.GetByUUID(ctx, claims.MemberUUID)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.GeneratePair(member.UUID, member.Nickname, member.Provider)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}, nil
}

// Logout revokes the member's outstanding tokens.
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return err
	}
	s.tokens.Revoke(claims.MemberUUID)
	l := log.Ctx(ctx)
	l.Info().Str(log.FieldMemberUUID, claims.MemberUUID).Msg("member logged out")
	return nil
}
