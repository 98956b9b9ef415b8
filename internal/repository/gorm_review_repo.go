package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormReviewRepository implements ReviewRepository using GORM.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GORM-based review repository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	l := log.Ctx(ctx)

	exists, err := r.Exists(ctx, review.ChatRoomID, review.ReviewerID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyReviewed
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		l.Error().Err(err).Int64(log.FieldRoomID, review.ChatRoomID).Msg("failed to create review in db")
		return err
	}
	return nil
}

func (r *GormReviewRepository) Exists(ctx context.Context, chatRoomID, reviewerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("chat_room_id = ? AND reviewer_id = ?", chatRoomID, reviewerID).
		Count(&count).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to check review")
		return false, err
	}
	return count > 0, nil
}

func (r *GormReviewRepository) ListByReviewee(ctx context.Context, revieweeID int64, page, size int) ([]domain.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Review{}).Where("reviewee_id = ?", revieweeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to count reviews")
		return nil, 0, err
	}

	var reviews []domain.Review
	err := query.
		Preload("Reviewer").
		Order("created_at DESC").
		Offset(page * size).
		Limit(size).
		Find(&reviews).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldMemberID, revieweeID).Msg("failed to list reviews from db")
		return nil, 0, err
	}
	return reviews, total, nil
}

// AverageScore returns the mean score and review count for a member.
func (r *GormReviewRepository) AverageScore(ctx context.Context, revieweeID int64) (float64, int64, error) {
	type row struct {
		Avg   float64
		Count int64
	}
	var res row
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS count").
		Where("reviewee_id = ?", revieweeID).
		Scan(&res).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to compute average score")
		return 0, 0, err
	}
	return res.Avg, res.Count, nil
}
