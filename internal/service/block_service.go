package service

import (
	"context"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// blockServiceImpl implements BlockService.
type blockServiceImpl struct {
	blocks  repository.BlockRepository
	members MemberService
}

// NewBlockService creates a new block service.
func NewBlockService(blocks repository.BlockRepository, members MemberService) BlockService {
	return &blockServiceImpl{blocks: blocks, members: members}
}

func (s *blockServiceImpl) Block(ctx context.Context, memberUUID string, targetID int64) error {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return err
	}
	if member.ID == targetID {
		return ErrSelfTarget
	}
	if _, err := s.members.ResolveByID(ctx, targetID); err != nil {
		return err
	}

	err = s.blocks.Create(ctx, &domain.Block{MemberID: member.ID, BlockedMemberID: targetID})
	if err != nil {
		return err
	}
	l := log.Ctx(ctx)
	l.Info().Int64(log.FieldMemberID, member.ID).Int64("blocked_member_id", targetID).Msg("member blocked")
	return nil
}

func (s *blockServiceImpl) Unblock(ctx context.Context, memberUUID string, targetID int64) error {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return err
	}
	return s.blocks.Delete(ctx, member.ID, targetID)
}

func (s *blockServiceImpl) List(ctx context.Context, memberUUID string) (*domain.BlockListResponse, error) {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, err
	}

	blocks, err := s.blocks.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BlockResponse, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].ToResponse()
	}
	return &domain.BlockListResponse{Blocks: out}, nil
}
