package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormPostLikeRepository implements PostLikeRepository using GORM. Like
// and Unlike adjust posts.like_count in the same transaction.
type GormPostLikeRepository struct {
	db *gorm.DB
}

// NewGormPostLikeRepository creates a new GORM-based like repository.
func NewGormPostLikeRepository(db *gorm.DB) *GormPostLikeRepository {
	return &GormPostLikeRepository{db: db}
}

func (r *GormPostLikeRepository) Like(ctx context.Context, memberID, postID int64) error {
	l := log.Ctx(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.PostLike{}).
			Where("member_id = ? AND post_id = ?", memberID, postID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyLiked
		}
		if err := tx.Create(&domain.PostLike{MemberID: memberID, PostID: postID}).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Post{}).
			Where("id = ?", postID).
			Update("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil && !errors.Is(err, ErrAlreadyLiked) {
		l.Error().Err(err).Int64(log.FieldPostID, postID).Msg("failed to like post")
	}
	return err
}

func (r *GormPostLikeRepository) Unlike(ctx context.Context, memberID, postID int64) error {
	l := log.Ctx(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("member_id = ? AND post_id = ?", memberID, postID).
			Delete(&domain.PostLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotLiked
		}
		return tx.Model(&domain.Post{}).
			Where("id = ? AND like_count > 0", postID).
			Update("like_count", gorm.Expr("like_count - 1")).Error
	})
	if err != nil && !errors.Is(err, ErrNotLiked) {
		l.Error().Err(err).Int64(log.FieldPostID, postID).Msg("failed to unlike post")
	}
	return err
}

func (r *GormPostLikeRepository) Exists(ctx context.Context, memberID, postID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostLike{}).
		Where("member_id = ? AND post_id = ?", memberID, postID).
		Count(&count).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to check like")
		return false, err
	}
	return count > 0, nil
}

// LikedPostIDs returns which of the given posts the member liked, for
// decorating a feed page in one query.
func (r *GormPostLikeRepository) LikedPostIDs(ctx context.Context, memberID int64, postIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(postIDs))
	if memberID <= 0 || len(postIDs) == 0 {
		return out, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.PostLike{}).
		Where("member_id = ? AND post_id IN ?", memberID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to load liked post ids")
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
