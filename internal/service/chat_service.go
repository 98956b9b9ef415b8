package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/events"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/chatwire"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// chatServiceImpl implements ChatService.
type chatServiceImpl struct {
	rooms    repository.ChatRoomRepository
	messages repository.ChatMessageRepository
	posts    repository.PostRepository
	blocks   repository.BlockRepository
	members  MemberService
	filter   *ProfanityFilter
	producer events.EventProducer
}

// NewChatService creates a new chat service.
func NewChatService(
	rooms repository.ChatRoomRepository,
	messages repository.ChatMessageRepository,
	posts repository.PostRepository,
	blocks repository.BlockRepository,
	members MemberService,
	filter *ProfanityFilter,
	producer events.EventProducer,
) ChatService {
	return &chatServiceImpl{
		rooms:    rooms,
		messages: messages,
		posts:    posts,
		blocks:   blocks,
		members:  members,
		filter:   filter,
		producer: producer,
	}
}

// CreateRoom opens the room between the caller and the post owner,
// returning the existing one when the caller already applied.
func (s *chatServiceImpl) CreateRoom(ctx context.Context, memberUUID string, postID int64) (*domain.ChatRoomResponse, error) {
	l := log.Ctx(ctx)

	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, err
	}
	if member.NeedsSetup() {
		return nil, ErrSetupRequired
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.MemberID == member.ID {
		return nil, ErrOwnPost
	}

	blocked, err := s.blocks.EitherBlocked(ctx, member.ID, post.MemberID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	room, err := s.rooms.GetByPostAndApplicant(ctx, postID, member.ID)
	if err == nil {
		// Re-entering clears a previous leave.
		if room.ApplicantLeftAt != nil {
			room.ApplicantLeftAt = nil
			if err := s.rooms.Update(ctx, room); err != nil {
				return nil, err
			}
		}
		return s.buildRoomResponse(ctx, room, member.ID)
	}
	if !errors.Is(err, repository.ErrRoomNotFound) {
		return nil, err
	}

	room = &domain.ChatRoom{
		PostID:      postID,
		OwnerID:     post.MemberID,
		ApplicantID: member.ID,
		Status:      domain.RoomStatusActive,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	l.Info().Int64(log.FieldRoomID, room.ID).Int64(log.FieldPostID, postID).Msg("chat room created")

	room, err = s.rooms.GetByID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return s.buildRoomResponse(ctx, room, member.ID)
}

func (s *chatServiceImpl) GetRoom(ctx context.Context, memberUUID string, roomID int64) (*domain.ChatRoomResponse, error) {
	member, room, err := s.participantRoom(ctx, memberUUID, roomID)
	if err != nil {
		return nil, err
	}
	return s.buildRoomResponse(ctx, room, member.ID)
}

func (s *chatServiceImpl) ListRooms(ctx context.Context, memberUUID string, page, size int) (*domain.ChatRoomListResponse, error) {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 20
	}

	rooms, total, err := s.rooms.ListByParticipant(ctx, member.ID, page, size)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	lastMessages, err := s.messages.LastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	unreadCounts, err := s.messages.UnreadCounts(ctx, ids, member.ID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ChatRoomResponse, len(rooms))
	for i := range rooms {
		var last *chatwire.ChatMessage
		if m, ok := lastMessages[rooms[i].ID]; ok {
			wire := m.ToWire(senderNickname(&m))
			last = &wire
		}
		out[i] = rooms[i].ToResponse(member.ID, last, unreadCounts[rooms[i].ID])
	}
	return &domain.ChatRoomListResponse{
		ChatRooms: out,
		Page:      domain.NewPage(page, size, total),
	}, nil
}

func (s *chatServiceImpl) ListMessages(ctx context.Context, memberUUID string, roomID int64, page, size int) (*domain.ChatMessageListResponse, error) {
	_, _, err := s.participantRoom(ctx, memberUUID, roomID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 50
	}

	messages, total, err := s.messages.ListByRoom(ctx, roomID, page, size)
	if err != nil {
		return nil, err
	}

	out := make([]chatwire.ChatMessage, len(messages))
	for i := range messages {
		out[i] = messages[i].ToWire(senderNickname(&messages[i]))
	}
	return &domain.ChatMessageListResponse{
		Messages: out,
		Page:     domain.NewPage(page, size, total),
	}, nil
}

// SaveMessage validates, filters and persists one message, returning
// the wire shape to broadcast to room subscribers.
func (s *chatServiceImpl) SaveMessage(ctx context.Context, senderID int64, req *chatwire.SendRequest) (*chatwire.ChatMessage, error) {
	l := log.Ctx(ctx)

	room, err := s.rooms.GetByID(ctx, req.ChatRoomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}
	if room.LeftAt(senderID) != nil {
		return nil, ErrRoomLeft
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = chatwire.MessageTypeText
	}

	msg := &domain.ChatMessage{
		ChatRoomID:  room.ID,
		SenderID:    senderID,
		MessageType: messageType,
	}
	switch messageType {
	case chatwire.MessageTypeText:
		content := strings.TrimSpace(req.Content)
		if content == "" || req.ImageURL != "" {
			return nil, ErrInvalidMessage
		}
		content = s.filter.Mask(content)
		msg.Content = &content
	case chatwire.MessageTypeImage:
		if req.ImageURL == "" || req.Content != "" {
			return nil, ErrInvalidMessage
		}
		imageURL := req.ImageURL
		msg.ImageURL = &imageURL
	default:
		return nil, ErrInvalidMessage
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.rooms.Touch(ctx, room.ID); err != nil {
		l.Warn().Err(err).Int64(log.FieldRoomID, room.ID).Msg("failed to touch chat room")
	}

	s.produce(ctx, &events.ChatEvent{
		Type:       events.EventMessageSent,
		ChatRoomID: room.ID,
		PostID:     room.PostID,
		ActorID:    senderID,
		TargetID:   room.OtherParticipant(senderID),
		MessageID:  msg.ID,
	})

	sender, err := s.members.ResolveByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	wire := msg.ToWire(sender.Nickname)
	return &wire, nil
}

// MarkMessagesRead flips the other side's unread messages in the room.
func (s *chatServiceImpl) MarkMessagesRead(ctx context.Context, roomID, readerID int64) (int64, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if !room.HasParticipant(readerID) {
		return 0, ErrNotParticipant
	}

	changed, err := s.messages.MarkRead(ctx, roomID, readerID)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.produce(ctx, &events.ChatEvent{
			Type:       events.EventMessagesRead,
			ChatRoomID: roomID,
			ActorID:    readerID,
			TargetID:   room.OtherParticipant(readerID),
		})
	}
	return changed, nil
}

// CanAccessRoom authorizes a websocket subscription to a room's topics.
func (s *chatServiceImpl) CanAccessRoom(ctx context.Context, roomID, memberID int64) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(memberID) {
		return ErrNotParticipant
	}
	return nil
}

// Reserve marks the trade as promised to this room's applicant.
func (s *chatServiceImpl) Reserve(ctx context.Context, memberUUID string, roomID int64, req *domain.ReserveRequest) (*domain.ChatRoomResponse, error) {
	member, room, err := s.ownerRoom(ctx, memberUUID, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == domain.RoomStatusCompleted {
		return nil, ErrTradeCompleted
	}

	room.Status = domain.RoomStatusReserved
	room.ScheduledTradeAt = req.ScheduledTradeAt
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateStatus(ctx, room.PostID, domain.PostStatusReserved); err != nil {
		return nil, err
	}

	s.produce(ctx, &events.ChatEvent{
		Type:       events.EventTradeReserved,
		ChatRoomID: room.ID,
		PostID:     room.PostID,
		ActorID:    member.ID,
		TargetID:   room.ApplicantID,
	})
	l := log.Ctx(ctx)
	l.Info().Int64(log.FieldRoomID, roomID).Msg("trade reserved")

	return s.refreshedRoomResponse(ctx, roomID, member.ID)
}

// Unreserve puts a reserved trade back on the market.
func (s *chatServiceImpl) Unreserve(ctx context.Context, memberUUID string, roomID int64) (*domain.ChatRoomResponse, error) {
	member, room, err := s.ownerRoom(ctx, memberUUID, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == domain.RoomStatusCompleted {
		return nil, ErrTradeCompleted
	}

	room.Status = domain.RoomStatusActive
	room.ScheduledTradeAt = nil
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateStatus(ctx, room.PostID, domain.PostStatusAvailable); err != nil {
		return nil, err
	}
	l := log.Ctx(ctx)
	l.Info().Int64(log.FieldRoomID, roomID).Msg("trade unreserved")

	return s.refreshedRoomResponse(ctx, roomID, member.ID)
}

// Complete finishes the trade and bumps both members' trade counts.
func (s *chatServiceImpl) Complete(ctx context.Context, memberUUID string, roomID int64) (*domain.ChatRoomResponse, error) {
	member, room, err := s.ownerRoom(ctx, memberUUID, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == domain.RoomStatusCompleted {
		return nil, ErrTradeCompleted
	}

	room.Status = domain.RoomStatusCompleted
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateStatus(ctx, room.PostID, domain.PostStatusCompleted); err != nil {
		return nil, err
	}

	s.produce(ctx, &events.ChatEvent{
		Type:       events.EventTradeCompleted,
		ChatRoomID: room.ID,
		PostID:     room.PostID,
		ActorID:    member.ID,
		TargetID:   room.ApplicantID,
	})
	l := log.Ctx(ctx)
	l.Info().Int64(log.FieldRoomID, roomID).Int64(log.FieldPostID, room.PostID).Msg("trade completed")

	return s.refreshedRoomResponse(ctx, roomID, member.ID)
}

// Leave hides the room from the caller's list.
func (s *chatServiceImpl) Leave(ctx context.Context, memberUUID string, roomID int64) error {
	member, room, err := s.participantRoom(ctx, memberUUID, roomID)
	if err != nil {
		return err
	}

	now := time.Now()
	if room.OwnerID == member.ID {
		room.OwnerLeftAt = &now
	} else {
		room.ApplicantLeftAt = &now
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return err
	}
	l := log.Ctx(ctx)
	l.Info().Int64(log.FieldRoomID, roomID).Int64(log.FieldMemberID, member.ID).Msg("chat room left")
	return nil
}

func (s *chatServiceImpl) participantRoom(ctx context.Context, memberUUID string, roomID int64) (*domain.Member, *domain.ChatRoom, error) {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if !room.HasParticipant(member.ID) {
		return nil, nil, ErrNotParticipant
	}
	return member, room, nil
}

func (s *chatServiceImpl) ownerRoom(ctx context.Context, memberUUID string, roomID int64) (*domain.Member, *domain.ChatRoom, error) {
	member, room, err := s.participantRoom(ctx, memberUUID, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room.OwnerID != member.ID {
		return nil, nil, ErrNotRoomOwner
	}
	return member, room, nil
}

func (s *chatServiceImpl) buildRoomResponse(ctx context.Context, room *domain.ChatRoom, viewerID int64) (*domain.ChatRoomResponse, error) {
	lastMessages, err := s.messages.LastMessages(ctx, []int64{room.ID})
	if err != nil {
		return nil, err
	}
	unreadCounts, err := s.messages.UnreadCounts(ctx, []int64{room.ID}, viewerID)
	if err != nil {
		return nil, err
	}

	var last *chatwire.ChatMessage
	if m, ok := lastMessages[room.ID]; ok {
		wire := m.ToWire(senderNickname(&m))
		last = &wire
	}
	resp := room.ToResponse(viewerID, last, unreadCounts[room.ID])
	return &resp, nil
}

func (s *chatServiceImpl) refreshedRoomResponse(ctx context.Context, roomID, viewerID int64) (*domain.ChatRoomResponse, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.buildRoomResponse(ctx, room, viewerID)
}

func (s *chatServiceImpl) produce(ctx context.Context, event *events.ChatEvent) {
	if err := s.producer.Produce(ctx, event); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("event_type", event.Type).Msg("failed to produce chat event")
	}
}

func senderNickname(m *domain.ChatMessage) string {
	if m.Sender != nil {
		return m.Sender.Nickname
	}
	return ""
}
