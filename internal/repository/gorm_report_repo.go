package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormReportRepository implements ReportRepository using GORM.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GORM-based report repository.
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

func (r *GormReportRepository) Create(ctx context.Context, report *domain.Report) error {
	l := log.Ctx(ctx)

	exists, err := r.Exists(ctx, report.ReporterID, report.TargetType, report.TargetID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyReported
	}
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		l.Error().Err(err).Msg("failed to create report in db")
		return err
	}
	l.Debug().Str("target_type", report.TargetType).Int64("target_id", report.TargetID).Msg("report created in db")
	return nil
}

func (r *GormReportRepository) Exists(ctx context.Context, reporterID int64, targetType string, targetID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ?", reporterID, targetType, targetID).
		Count(&count).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to check report")
		return false, err
	}
	return count > 0, nil
}
