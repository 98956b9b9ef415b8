package service

import (
	"context"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/chatwire"
)

// AuthService handles social login and token lifecycle.
type AuthService interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

// MemberService handles profiles and membership.
type MemberService interface {
	Me(ctx context.Context, memberUUID string) (*domain.MemberResponse, error)
	SetupProfile(ctx context.Context, memberUUID string, req *domain.ProfileSetupRequest) (*domain.MemberResponse, error)
	UpdateProfile(ctx context.Context, memberUUID string, req *domain.ProfileUpdateRequest) (*domain.MemberResponse, error)
	GetProfile(ctx context.Context, memberID int64) (*domain.MemberProfileResponse, error)
	Withdraw(ctx context.Context, memberUUID string) error
	// Resolve loads a member by uuid, through the cache when possible.
	Resolve(ctx context.Context, memberUUID string) (*domain.Member, error)
	ResolveByID(ctx context.Context, memberID int64) (*domain.Member, error)
}

// PostService handles the trade listing feed.
type PostService interface {
	Create(ctx context.Context, memberUUID string, req *domain.PostCreateRequest) (*domain.PostResponse, error)
	Get(ctx context.Context, viewerUUID string, postID int64) (*domain.PostResponse, error)
	List(ctx context.Context, viewerUUID string, filter domain.PostFilter) (*domain.PostListResponse, error)
	ListMine(ctx context.Context, memberUUID string, page, size int) (*domain.PostListResponse, error)
	ListLiked(ctx context.Context, memberUUID string, page, size int) (*domain.PostListResponse, error)
	Update(ctx context.Context, memberUUID string, postID int64, req *domain.PostUpdateRequest) (*domain.PostResponse, error)
	Delete(ctx context.Context, memberUUID string, postID int64) error
	Bump(ctx context.Context, memberUUID string, postID int64) error
	Like(ctx context.Context, memberUUID string, postID int64) error
	Unlike(ctx context.Context, memberUUID string, postID int64) error
}

// ChatService handles rooms, messages and the trade lifecycle.
type ChatService interface {
	CreateRoom(ctx context.Context, memberUUID string, postID int64) (*domain.ChatRoomResponse, error)
	GetRoom(ctx context.Context, memberUUID string, roomID int64) (*domain.ChatRoomResponse, error)
	ListRooms(ctx context.Context, memberUUID string, page, size int) (*domain.ChatRoomListResponse, error)
	ListMessages(ctx context.Context, memberUUID string, roomID int64, page, size int) (*domain.ChatMessageListResponse, error)

	// SaveMessage validates, filters and persists one message from a
	// connected client and returns the wire shape to broadcast.
	SaveMessage(ctx context.Context, senderID int64, req *chatwire.SendRequest) (*chatwire.ChatMessage, error)
	// MarkMessagesRead flips the other side's unread messages and
	// reports whether anything changed.
	MarkMessagesRead(ctx context.Context, roomID, readerID int64) (int64, error)
	// CanAccessRoom authorizes a websocket subscription.
	CanAccessRoom(ctx context.Context, roomID, memberID int64) error

	Reserve(ctx context.Context, memberUUID string, roomID int64, req *domain.ReserveRequest) (*domain.ChatRoomResponse, error)
	Unreserve(ctx context.Context, memberUUID string, roomID int64) (*domain.ChatRoomResponse, error)
	Complete(ctx context.Context, memberUUID string, roomID int64) (*domain.ChatRoomResponse, error)
	Leave(ctx context.Context, memberUUID string, roomID int64) error
}

// PriceOfferService handles price negotiation on negotiable posts.
type PriceOfferService interface {
	Create(ctx context.Context, memberUUID string, postID int64, req *domain.PriceOfferCreateRequest) (*domain.PriceOfferResponse, error)
	ListByPost(ctx context.Context, memberUUID string, postID int64) (*domain.PriceOfferListResponse, error)
	// Accept settles a pending offer and opens (or reuses) the chat room
	// between owner and offerer.
	Accept(ctx context.Context, memberUUID string, offerID int64) (*domain.PriceOfferAcceptResponse, error)
	Reject(ctx context.Context, memberUUID string, offerID int64) error
}

// BlockService handles member blocks.
type BlockService interface {
	Block(ctx context.Context, memberUUID string, targetID int64) error
	Unblock(ctx context.Context, memberUUID string, targetID int64) error
	List(ctx context.Context, memberUUID string) (*domain.BlockListResponse, error)
}

// ReportService files moderation reports.
type ReportService interface {
	Report(ctx context.Context, memberUUID string, req *domain.ReportRequest) error
}

// ReviewService handles post-trade reviews and the manner score.
type ReviewService interface {
	Create(ctx context.Context, memberUUID string, roomID int64, req *domain.ReviewRequest) error
	ListByMember(ctx context.Context, memberID int64, page, size int) (*domain.ReviewListResponse, error)
}

// ImageService issues upload destinations for post and chat images.
type ImageService interface {
	PresignUpload(ctx context.Context, memberUUID, contentType string) (*domain.PresignResponse, error)
}
