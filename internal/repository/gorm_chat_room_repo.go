package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormChatRoomRepository implements ChatRoomRepository using GORM.
type GormChatRoomRepository struct {
	db *gorm.DB
}

// NewGormChatRoomRepository creates a new GORM-based chat room repository.
func NewGormChatRoomRepository(db *gorm.DB) *GormChatRoomRepository {
	return &GormChatRoomRepository{db: db}
}

func (r *GormChatRoomRepository) Create(ctx context.Context, room *domain.ChatRoom) error {
	l := log.Ctx(ctx)

	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		l.Error().Err(err).Msg("failed to create chat room in db")
		return err
	}
	l.Debug().Int64(log.FieldRoomID, room.ID).Msg("chat room created in db")
	return nil
}

func (r *GormChatRoomRepository) GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Post").
		Preload("Owner").
		Preload("Applicant").
		First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldRoomID, id).Msg("failed to get chat room by id")
		return nil, err
	}
	return &room, nil
}

func (r *GormChatRoomRepository) GetByPostAndApplicant(ctx context.Context, postID, applicantID int64) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Post").
		Preload("Owner").
		Preload("Applicant").
		First(&room, "post_id = ? AND applicant_id = ?", postID, applicantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldPostID, postID).Msg("failed to get chat room by post and applicant")
		return nil, err
	}
	return &room, nil
}

// ListByParticipant pages the member's visible rooms, most recently
// active first. Rooms the member has left are excluded.
func (r *GormChatRoomRepository) ListByParticipant(ctx context.Context, memberID int64, page, size int) ([]domain.ChatRoom, int64, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).Model(&domain.ChatRoom{}).
		Where(
			"(owner_id = ? AND owner_left_at IS NULL) OR (applicant_id = ? AND applicant_left_at IS NULL)",
			memberID, memberID,
		)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count chat rooms")
		return nil, 0, err
	}

	var rooms []domain.ChatRoom
	err := query.
		Preload("Post").
		Preload("Owner").
		Preload("Applicant").
		Order("updated_at DESC").
		Offset(page * size).
		Limit(size).
		Find(&rooms).Error
	if err != nil {
		l.Error().Err(err).Int64(log.FieldMemberID, memberID).Msg("failed to list chat rooms from db")
		return nil, 0, err
	}
	return rooms, total, nil
}

func (r *GormChatRoomRepository) Update(ctx context.Context, room *domain.ChatRoom) error {
	if err := r.db.WithContext(ctx).Save(room).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int64(log.FieldRoomID, room.ID).Msg("failed to update chat room in db")
		return err
	}
	return nil
}

// Touch bumps updated_at so the room surfaces at the top of the list
// when a message arrives.
func (r *GormChatRoomRepository) Touch(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.ChatRoom{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}
