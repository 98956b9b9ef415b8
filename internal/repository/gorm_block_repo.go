package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormBlockRepository implements BlockRepository using GORM.
type GormBlockRepository struct {
	db *gorm.DB
}

// NewGormBlockRepository creates a new GORM-based block repository.
func NewGormBlockRepository(db *gorm.DB) *GormBlockRepository {
	return &GormBlockRepository{db: db}
}

func (r *GormBlockRepository) Create(ctx context.Context, b *domain.Block) error {
	l := log.Ctx(ctx)

	exists, err := r.Exists(ctx, b.MemberID, b.BlockedMemberID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyBlocked
	}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		l.Error().Err(err).Msg("failed to create block in db")
		return err
	}
	return nil
}

func (r *GormBlockRepository) Delete(ctx context.Context, memberID, blockedMemberID int64) error {
	result := r.db.WithContext(ctx).
		Where("member_id = ? AND blocked_member_id = ?", memberID, blockedMemberID).
		Delete(&domain.Block{})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Msg("failed to delete block in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotBlocked
	}
	return nil
}

func (r *GormBlockRepository) Exists(ctx context.Context, memberID, blockedMemberID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Block{}).
		Where("member_id = ? AND blocked_member_id = ?", memberID, blockedMemberID).
		Count(&count).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to check block")
		return false, err
	}
	return count > 0, nil
}

func (r *GormBlockRepository) EitherBlocked(ctx context.Context, a, b int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Block{}).
		Where(
			"(member_id = ? AND blocked_member_id = ?) OR (member_id = ? AND blocked_member_id = ?)",
			a, b, b, a,
		).
		Count(&count).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to check mutual block")
		return false, err
	}
	return count > 0, nil
}

func (r *GormBlockRepository) ListByMember(ctx context.Context, memberID int64) ([]domain.Block, error) {
	var blocks []domain.Block
	err := r.db.WithContext(ctx).
		Preload("BlockedMember").
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&blocks).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldMemberID, memberID).Msg("failed to list blocks from db")
		return nil, err
	}
	return blocks, nil
}

func (r *GormBlockRepository) BlockedIDs(ctx context.Context, memberID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.Block{}).
		Where("member_id = ?", memberID).
		Pluck("blocked_member_id", &ids).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldMemberID, memberID).Msg("failed to load blocked ids")
		return nil, err
	}
	return ids, nil
}
