package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/pkg/chatwire"
)

// Chat room trade states. Reserving a room marks the post reserved for
// that applicant; completing it finishes the trade.
const (
	RoomStatusActive    = "ACTIVE"
	RoomStatusReserved  = "RESERVED"
	RoomStatusCompleted = "COMPLETED"
)

// ChatRoom is a one-to-one conversation between a post owner and an
// applicant. At most one room exists per (post, applicant) pair.
type ChatRoom struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	PostID      int64  `gorm:"not null;uniqueIndex:idx_chat_rooms_post_applicant" json:"postId"`
	OwnerID     int64  `gorm:"index;not null" json:"ownerId"`
	ApplicantID int64  `gorm:"not null;uniqueIndex:idx_chat_rooms_post_applicant" json:"applicantId"`
	Status      string `gorm:"type:varchar(20);not null;default:ACTIVE" json:"status"`

	// A participant who leaves stops seeing the room; the room is only
	// soft deleted once both sides have left.
	OwnerLeftAt     *time.Time `json:"-"`
	ApplicantLeftAt *time.Time `json:"-"`

	ScheduledTradeAt *time.Time `json:"scheduledTradeAt"`

	Post      *Post   `gorm:"foreignKey:PostID" json:"-"`
	Owner     *Member `gorm:"foreignKey:OwnerID" json:"-"`
	Applicant *Member `gorm:"foreignKey:ApplicantID" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }

// HasParticipant reports whether the member is one of the two sides.
func (r *ChatRoom) HasParticipant(memberID int64) bool {
	return r.OwnerID == memberID || r.ApplicantID == memberID
}

// OtherParticipant returns the opposite side's member id.
func (r *ChatRoom) OtherParticipant(memberID int64) int64 {
	if r.OwnerID == memberID {
		return r.ApplicantID
	}
	return r.OwnerID
}

// LeftAt returns when the given participant left, nil if still present.
func (r *ChatRoom) LeftAt(memberID int64) *time.Time {
	if r.OwnerID == memberID {
		return r.OwnerLeftAt
	}
	return r.ApplicantLeftAt
}

// ChatMessage is one persisted chat line. Exactly one of Content and
// ImageURL is set, depending on MessageType.
type ChatMessage struct {
	ID          int64   `gorm:"primaryKey"`
	ChatRoomID  int64   `gorm:"index:idx_chat_messages_room_id;not null"`
	SenderID    int64   `gorm:"not null"`
	MessageType string  `gorm:"type:varchar(10);not null;default:TEXT"`
	Content     *string `gorm:"type:text"`
	ImageURL    *string `gorm:"type:varchar(500)"`
	IsRead      bool    `gorm:"not null;default:false"`

	Sender *Member `gorm:"foreignKey:SenderID"`

	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// ToWire converts to the wire shape broadcast over websocket and
// returned by the history endpoint.
func (m *ChatMessage) ToWire(senderNickname string) chatwire.ChatMessage {
	return chatwire.ChatMessage{
		ID:             m.ID,
		ChatRoomID:     m.ChatRoomID,
		SenderID:       m.SenderID,
		SenderNickname: senderNickname,
		MessageType:    m.MessageType,
		Content:        m.Content,
		ImageURL:       m.ImageURL,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

// ChatRoomCreateRequest opens (or returns) the room for a post.
type ChatRoomCreateRequest struct {
	PostID int64 `json:"postId" binding:"required"`
}

// ReserveRequest schedules a trade when reserving a room.
type ReserveRequest struct {
	ScheduledTradeAt *time.Time `json:"scheduledTradeAt"`
}

// ChatRoomResponse is the room list/detail view from one member's
// perspective.
type ChatRoomResponse struct {
	ID               int64                 `json:"id"`
	PostID           int64                 `json:"postId"`
	PostItemName     string                `json:"postItemName"`
	PostImageURL     string                `json:"postImageUrl"`
	PostPrice        int64                 `json:"postPrice"`
	PostCurrencyType string                `json:"postCurrencyType"`
	PostStatus       string                `json:"postStatus"`
	Status           string                `json:"status"`
	IsOwner          bool                  `json:"isOwner"`
	OtherUser        ChatRoomOtherUser     `json:"otherUser"`
	LastMessage      *chatwire.ChatMessage `json:"lastMessage"`
	UnreadCount      int64                 `json:"unreadCount"`
	ScheduledTradeAt *time.Time            `json:"scheduledTradeAt"`
	CreatedAt        time.Time             `json:"createdAt"`
}

// ChatRoomOtherUser summarizes the opposite participant.
type ChatRoomOtherUser struct {
	ID          int64  `json:"id"`
	Nickname    string `json:"nickname"`
	IslandName  string `json:"islandName"`
	MannerScore int    `json:"mannerScore"`
}

// ChatRoomListResponse pages a member's rooms.
type ChatRoomListResponse struct {
	ChatRooms []ChatRoomResponse `json:"chatRooms"`
	Page
}

// ChatMessageListResponse pages a room's history, oldest first.
type ChatMessageListResponse struct {
	Messages []chatwire.ChatMessage `json:"messages"`
	Page
}

// ToResponse builds the member-relative room view. Post, Owner and
// Applicant must be preloaded.
func (r *ChatRoom) ToResponse(viewerID int64, lastMessage *chatwire.ChatMessage, unreadCount int64) ChatRoomResponse {
	resp := ChatRoomResponse{
		ID:               r.ID,
		PostID:           r.PostID,
		Status:           r.Status,
		IsOwner:          r.OwnerID == viewerID,
		LastMessage:      lastMessage,
		UnreadCount:      unreadCount,
		ScheduledTradeAt: r.ScheduledTradeAt,
		CreatedAt:        r.CreatedAt,
	}
	if r.Post != nil {
		resp.PostItemName = r.Post.ItemName
		resp.PostPrice = r.Post.Price
		resp.PostCurrencyType = r.Post.CurrencyType
		resp.PostStatus = r.Post.Status
		if len(r.Post.ImageURLs) > 0 {
			resp.PostImageURL = r.Post.ImageURLs[0]
		}
	}
	other := r.Applicant
	if r.OwnerID != viewerID {
		other = r.Owner
	}
	if other != nil {
		resp.OtherUser = ChatRoomOtherUser{
			ID:          other.ID,
			Nickname:    other.Nickname,
			IslandName:  other.IslandName,
			MannerScore: other.MannerScore,
		}
	}
	return resp
}
