package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// GormChatMessageRepository implements ChatMessageRepository using GORM.
type GormChatMessageRepository struct {
	db *gorm.DB
}

// NewGormChatMessageRepository creates a new GORM-based message repository.
func NewGormChatMessageRepository(db *gorm.DB) *GormChatMessageRepository {
	return &GormChatMessageRepository{db: db}
}

func (r *GormChatMessageRepository) Create(ctx context.Context, m *domain.ChatMessage) error {
	l := log.Ctx(ctx)

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		l.Error().Err(err).Int64(log.FieldRoomID, m.ChatRoomID).Msg("failed to create chat message in db")
		return err
	}
	return nil
}

// ListByRoom pages history oldest first so a page renders top to bottom.
func (r *GormChatMessageRepository) ListByRoom(ctx context.Context, roomID int64, page, size int) ([]domain.ChatMessage, int64, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("chat_room_id = ?", roomID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count chat messages")
		return nil, 0, err
	}

	var messages []domain.ChatMessage
	err := query.
		Preload("Sender").
		Order("id ASC").
		Offset(page * size).
		Limit(size).
		Find(&messages).Error
	if err != nil {
		l.Error().Err(err).Int64(log.FieldRoomID, roomID).Msg("failed to list chat messages from db")
		return nil, 0, err
	}
	return messages, total, nil
}

// LastMessages returns the newest message per room in one query, for
// decorating a room list page.
func (r *GormChatMessageRepository) LastMessages(ctx context.Context, roomIDs []int64) (map[int64]domain.ChatMessage, error) {
	out := make(map[int64]domain.ChatMessage, len(roomIDs))
	if len(roomIDs) == 0 {
		return out, nil
	}

	latest := r.db.Model(&domain.ChatMessage{}).
		Select("MAX(id)").
		Where("chat_room_id IN ?", roomIDs).
		Group("chat_room_id")

	var messages []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("id IN (?)", latest).
		Find(&messages).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to load last messages")
		return nil, err
	}
	for _, m := range messages {
		out[m.ChatRoomID] = m
	}
	return out, nil
}

// UnreadCounts returns, per room, how many messages from the other side
// the member has not read yet.
func (r *GormChatMessageRepository) UnreadCounts(ctx context.Context, roomIDs []int64, memberID int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(roomIDs))
	if len(roomIDs) == 0 {
		return out, nil
	}

	type row struct {
		ChatRoomID int64
		Count      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Select("chat_room_id, COUNT(*) AS count").
		Where("chat_room_id IN ? AND sender_id <> ? AND is_read = ?", roomIDs, memberID, false).
		Group("chat_room_id").
		Scan(&rows).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to load unread counts")
		return nil, err
	}
	for _, r := range rows {
		out[r.ChatRoomID] = r.Count
	}
	return out, nil
}

// MarkRead flips every unread message the other side sent in the room
// and returns how many rows changed.
func (r *GormChatMessageRepository) MarkRead(ctx context.Context, roomID, readerID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("chat_room_id = ? AND sender_id <> ? AND is_read = ?", roomID, readerID, false).
		Update("is_read", true)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Int64(log.FieldRoomID, roomID).Msg("failed to mark messages read")
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
