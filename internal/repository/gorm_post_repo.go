package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, p *domain.Post) error {
	l := log.Ctx(ctx)

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		l.Error().Err(err).Msg("failed to create post in db")
		return err
	}
	l.Debug().Int64(log.FieldPostID, p.ID).Msg("post created in db")
	return nil
}

func (r *GormPostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	var p domain.Post
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Category").
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldPostID, id).Msg("failed to get post by id")
		return nil, err
	}
	return &p, nil
}

// List pages the feed, newest activity first. Bumped posts sort by bump
// time so a bump moves the listing back to the top.
func (r *GormPostRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int64, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).Model(&domain.Post{})
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.PostType != "" {
		query = query.Where("post_type = ?", filter.PostType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CurrencyType != "" {
		query = query.Where("currency_type = ?", filter.CurrencyType)
		if filter.MinPrice != nil {
			query = query.Where("price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			query = query.Where("price <= ?", *filter.MaxPrice)
		}
	}
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("item_name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.ViewerID > 0 {
		query = query.Where(
			"member_id NOT IN (?)",
			r.db.Model(&domain.Block{}).Select("blocked_member_id").Where("member_id = ?", filter.ViewerID),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count posts")
		return nil, 0, err
	}

	var posts []domain.Post
	err := query.
		Preload("Member").
		Preload("Category").
		Order("COALESCE(bumped_at, created_at) DESC").
		Offset(filter.Page * filter.Size).
		Limit(filter.Size).
		Find(&posts).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to list posts from db")
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *GormPostRepository) ListByMember(ctx context.Context, memberID int64, page, size int) ([]domain.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Post{}).Where("member_id = ?", memberID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to count member posts")
		return nil, 0, err
	}

	var posts []domain.Post
	err := query.
		Preload("Member").
		Preload("Category").
		Order("created_at DESC").
		Offset(page * size).
		Limit(size).
		Find(&posts).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldMemberID, memberID).Msg("failed to list member posts")
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *GormPostRepository) ListLikedByMember(ctx context.Context, memberID int64, page, size int) ([]domain.Post, int64, error) {
	liked := r.db.Model(&domain.PostLike{}).Select("post_id").Where("member_id = ?", memberID)
	query := r.db.WithContext(ctx).Model(&domain.Post{}).Where("id IN (?)", liked)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to count liked posts")
		return nil, 0, err
	}

	var posts []domain.Post
	err := query.
		Preload("Member").
		Preload("Category").
		Order("created_at DESC").
		Offset(page * size).
		Limit(size).
		Find(&posts).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldMemberID, memberID).Msg("failed to list liked posts")
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *GormPostRepository) Update(ctx context.Context, p *domain.Post) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldPostID, p.ID).Msg("failed to update post in db")
		return err
	}
	return nil
}

func (r *GormPostRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Int64(log.FieldPostID, id).Msg("failed to update post status")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *GormPostRepository) Bump(ctx context.Context, id int64, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ?", id).
		Update("bumped_at", at)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Int64(log.FieldPostID, id).Msg("failed to bump post")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *GormPostRepository) IncrementViewCount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *GormPostRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Post{}, id)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Int64(log.FieldPostID, id).Msg("failed to delete post in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}
