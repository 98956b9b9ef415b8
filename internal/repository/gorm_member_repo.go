package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormMemberRepository implements MemberRepository using GORM.
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GORM-based member repository.
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

func (r *GormMemberRepository) Create(ctx context.Context, m *domain.Member) error {
	l := log.Ctx(ctx)

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		l.Error().Err(err).Msg("failed to create member in db")
		return err
	}
	l.Debug().Int64(log.FieldMemberID, m.ID).Msg("member created in db")
	return nil
}

func (r *GormMemberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	var m domain.Member
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldMemberID, id).Msg("failed to get member by id")
		return nil, err
	}
	return &m, nil
}

func (r *GormMemberRepository) GetByUUID(ctx context.Context, uuid string) (*domain.Member, error) {
	var m domain.Member
	err := r.db.WithContext(ctx).First(&m, "uuid = ?", uuid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldMemberUUID, uuid).Msg("failed to get member by uuid")
		return nil, err
	}
	return &m, nil
}

func (r *GormMemberRepository) GetByProviderSubject(ctx context.Context, provider, subject string) (*domain.Member, error) {
	var m domain.Member
	err := r.db.WithContext(ctx).
		First(&m, "provider = ? AND provider_subject = ?", provider, subject).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str("provider", provider).Msg("failed to get member by provider subject")
		return nil, err
	}
	return &m, nil
}

func (r *GormMemberRepository) NicknameExists(ctx context.Context, nickname string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Member{}).Where("nickname = ?", nickname)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to check nickname")
		return false, err
	}
	return count > 0, nil
}

func (r *GormMemberRepository) Update(ctx context.Context, m *domain.Member) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldMemberID, m.ID).Msg("failed to update member in db")
		return err
	}
	return nil
}

func (r *GormMemberRepository) UpdateMannerScore(ctx context.Context, id int64, score int) error {
	result := r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("id = ?", id).
		Update("manner_score", score)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Int64(log.FieldMemberID, id).Msg("failed to update manner score")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *GormMemberRepository) IncrementTradeCount(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("id = ?", id).
		Update("total_trade_count", gorm.Expr("total_trade_count + 1"))
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Int64(log.FieldMemberID, id).Msg("failed to increment trade count")
		return result.Error
	}
	return nil
}

func (r *GormMemberRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Member{}, id)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Int64(log.FieldMemberID, id).Msg("failed to delete member in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
