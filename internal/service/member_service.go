package service

import (
	"context"
	"time"

	"github.com/AC-trading/ac-trading/internal/cache"
	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// memberServiceImpl implements MemberService.
type memberServiceImpl struct {
	repo     repository.MemberRepository
	cache    cache.MemberCache
	cacheTTL time.Duration
}

// NewMemberService creates a new member service.
func NewMemberService(repo repository.MemberRepository, memberCache cache.MemberCache, cacheTTL time.Duration) MemberService {
	return &memberServiceImpl{
		repo:     repo,
		cache:    memberCache,
		cacheTTL: cacheTTL,
	}
}

func (s *memberServiceImpl) Me(ctx context.Context, memberUUID string) (*domain.MemberResponse, error) {
	member, err := s.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, err
	}
	resp := member.ToResponse()
	return &resp, nil
}

func (s *memberServiceImpl) SetupProfile(ctx context.Context, memberUUID string, req *domain.ProfileSetupRequest) (*domain.MemberResponse, error) {
	l := log.Ctx(ctx)

	member, err := s.repo.GetByUUID(ctx, memberUUID)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.NicknameExists(ctx, req.Nickname, member.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrNicknameTaken
	}

	member.ApplyProfile(req.Nickname, req.IslandName, req.DreamAddress, req.Hemisphere, time.Now())
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	s.invalidate(ctx, member)
	l.Info().Str(log.FieldMemberUUID, memberUUID).Str(log.FieldNickname, req.Nickname).Msg("profile set up")

	resp := member.ToResponse()
	return &resp, nil
}

func (s *memberServiceImpl) UpdateProfile(ctx context.Context, memberUUID string, req *domain.ProfileUpdateRequest) (*domain.MemberResponse, error) {
	l := log.Ctx(ctx)

	member, err := s.repo.GetByUUID(ctx, memberUUID)
	if err != nil {
		return nil, err
	}
	if member.NeedsSetup() {
		return nil, ErrSetupRequired
	}

	now := time.Now()
	if !member.CanUpdateProfile(now) {
		return nil, ErrProfileEditCooldown
	}

	taken, err := s.repo.NicknameExists(ctx, req.Nickname, member.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrNicknameTaken
	}

	member.ApplyProfile(req.Nickname, req.IslandName, req.DreamAddress, req.Hemisphere, now)
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	s.invalidate(ctx, member)
	l.Info().Str(log.FieldMemberUUID, memberUUID).Msg("profile updated")

	resp := member.ToResponse()
	return &resp, nil
}

func (s *memberServiceImpl) GetProfile(ctx context.Context, memberID int64) (*domain.MemberProfileResponse, error) {
	member, err := s.ResolveByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	resp := member.ToProfileResponse()
	return &resp, nil
}

func (s *memberServiceImpl) Withdraw(ctx context.Context, memberUUID string) error {
	member, err := s.repo.GetByUUID(ctx, memberUUID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, member.ID); err != nil {
		return err
	}
	s.invalidate(ctx, member)
	l := log.Ctx(ctx)
	l.Info().Str(log.FieldMemberUUID, memberUUID).Msg("member withdrawn")
	return nil
}

// Resolve loads a member by uuid, serving from cache when possible.
func (s *memberServiceImpl) Resolve(ctx context.Context, memberUUID string) (*domain.Member, error) {
	key := s.cache.BuildKeyByUUID(memberUUID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		return &cached.Member, nil
	}

	member, err := s.repo.GetByUUID(ctx, memberUUID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, member)
	return member, nil
}

// ResolveByID loads a member by numeric id, serving from cache when
// possible.
func (s *memberServiceImpl) ResolveByID(ctx context.Context, memberID int64) (*domain.Member, error) {
	key := s.cache.BuildKeyByID(memberID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		return &cached.Member, nil
	}

	member, err := s.repo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, member)
	return member, nil
}

func (s *memberServiceImpl) store(ctx context.Context, member *domain.Member) {
	result := &cache.MemberCacheResult{Member: *member}
	if err := s.cache.Set(ctx, s.cache.BuildKeyByUUID(member.UUID), result, s.cacheTTL); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to cache member by uuid")
	}
	if err := s.cache.Set(ctx, s.cache.BuildKeyByID(member.ID), result, s.cacheTTL); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to cache member by id")
	}
}

func (s *memberServiceImpl) invalidate(ctx context.Context, member *domain.Member) {
	err := s.cache.Delete(ctx, s.cache.BuildKeyByUUID(member.UUID), s.cache.BuildKeyByID(member.ID))
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldMemberUUID, member.UUID).Msg("failed to invalidate member cache")
	}
}
