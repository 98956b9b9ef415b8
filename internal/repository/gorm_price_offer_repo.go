package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormPriceOfferRepository implements PriceOfferRepository using GORM.
type GormPriceOfferRepository struct {
	db *gorm.DB
}

// NewGormPriceOfferRepository creates a new GORM-based price offer repository.
func NewGormPriceOfferRepository(db *gorm.DB) *GormPriceOfferRepository {
	return &GormPriceOfferRepository{db: db}
}

func (r *GormPriceOfferRepository) Create(ctx context.Context, offer *domain.PriceOffer) error {
	l := log.Ctx(ctx)

	pending, err := r.HasPending(ctx, offer.PostID, offer.OffererID)
	if err != nil {
		return err
	}
	if pending {
		return ErrAlreadyOffered
	}
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		l.Error().Err(err).Int64(log.FieldPostID, offer.PostID).Msg("failed to create price offer in db")
		return err
	}
	return nil
}

func (r *GormPriceOfferRepository) GetByID(ctx context.Context, id int64) (*domain.PriceOffer, error) {
	var offer domain.PriceOffer
	err := r.db.WithContext(ctx).
		Preload("Offerer").
		First(&offer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64("offer_id", id).Msg("failed to get price offer by id")
		return nil, err
	}
	return &offer, nil
}

func (r *GormPriceOfferRepository) ListByPost(ctx context.Context, postID int64) ([]domain.PriceOffer, error) {
	var offers []domain.PriceOffer
	err := r.db.WithContext(ctx).
		Preload("Offerer").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldPostID, postID).Msg("failed to list price offers from db")
		return nil, err
	}
	return offers, nil
}

func (r *GormPriceOfferRepository) HasPending(ctx context.Context, postID, offererID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PriceOffer{}).
		Where("post_id = ? AND offerer_id = ? AND status = ?", postID, offererID, domain.OfferStatusPending).
		Count(&count).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to check pending price offer")
		return false, err
	}
	return count > 0, nil
}

// Accept flips a PENDING offer to ACCEPTED. The status guard in the
// WHERE clause makes concurrent accept/reject calls race safely.
func (r *GormPriceOfferRepository) Accept(ctx context.Context, id int64) (bool, error) {
	return r.decide(ctx, id, domain.OfferStatusAccepted)
}

// Reject flips a PENDING offer to REJECTED.
func (r *GormPriceOfferRepository) Reject(ctx context.Context, id int64) (bool, error) {
	return r.decide(ctx, id, domain.OfferStatusRejected)
}

func (r *GormPriceOfferRepository) decide(ctx context.Context, id int64, status string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.PriceOffer{}).
		Where("id = ? AND status = ?", id, domain.OfferStatusPending).
		Update("status", status)
	if res.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(res.Error).Int64("offer_id", id).Msg("failed to update price offer status")
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
