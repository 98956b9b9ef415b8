package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormCategoryRepository implements CategoryRepository using GORM.
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GORM-based category repository.
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).Order("sort_order ASC").Find(&categories).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list categories")
		return nil, err
	}
	return categories, nil
}

func (r *GormCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64("category_id", id).Msg("failed to get category")
		return nil, err
	}
	return &c, nil
}

// Seed inserts the default categories, skipping names that already exist.
func (r *GormCategoryRepository) Seed(ctx context.Context, categories []domain.Category) error {
	if len(categories) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&categories).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to seed categories")
		return err
	}
	return nil
}
