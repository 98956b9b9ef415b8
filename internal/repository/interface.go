package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AC-trading/ac-trading/internal/domain"
)

var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrNicknameTaken    = errors.New("nickname already taken")
	ErrCategoryNotFound = errors.New("category not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrAlreadyLiked     = errors.New("post already liked")
	ErrNotLiked         = errors.New("post not liked")
	ErrRoomNotFound     = errors.New("chat room not found")
	ErrAlreadyBlocked   = errors.New("member already blocked")
	ErrNotBlocked       = errors.New("member not blocked")
	ErrAlreadyReported  = errors.New("target already reported")
	ErrAlreadyReviewed  = errors.New("trade already reviewed")
	ErrOfferNotFound    = errors.New("price offer not found")
	ErrAlreadyOffered   = errors.New("pending price offer already exists")
)

// MemberRepository persists members.
type MemberRepository interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByID(ctx context.Context, id int64) (*domain.Member, error)
	GetByUUID(ctx context.Context, uuid string) (*domain.Member, error)
	GetByProviderSubject(ctx context.Context, provider, subject string) (*domain.Member, error)
	NicknameExists(ctx context.Context, nickname string, excludeID int64) (bool, error)
	Update(ctx context.Context, m *domain.Member) error
	UpdateMannerScore(ctx context.Context, id int64, score int) error
	IncrementTradeCount(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository persists listing categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Seed(ctx context.Context, categories []domain.Category) error
}

// PostRepository persists trade listings.
type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int64, error)
	ListByMember(ctx context.Context, memberID int64, page, size int) ([]domain.Post, int64, error)
	ListLikedByMember(ctx context.Context, memberID int64, page, size int) ([]domain.Post, int64, error)
	Update(ctx context.Context, p *domain.Post) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Bump(ctx context.Context, id int64, at time.Time) error
	IncrementViewCount(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// PostLikeRepository persists likes and keeps posts.like_count in step.
type PostLikeRepository interface {
	Like(ctx context.Context, memberID, postID int64) error
	Unlike(ctx context.Context, memberID, postID int64) error
	Exists(ctx context.Context, memberID, postID int64) (bool, error)
	LikedPostIDs(ctx context.Context, memberID int64, postIDs []int64) (map[int64]bool, error)
}

// ChatRoomRepository persists chat rooms.
type ChatRoomRepository interface {
	Create(ctx context.Context, r *domain.ChatRoom) error
	GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error)
	GetByPostAndApplicant(ctx context.Context, postID, applicantID int64) (*domain.ChatRoom, error)
	ListByParticipant(ctx context.Context, memberID int64, page, size int) ([]domain.ChatRoom, int64, error)
	Update(ctx context.Context, r *domain.ChatRoom) error
	Touch(ctx context.Context, id int64) error
}

// ChatMessageRepository persists chat messages.
type ChatMessageRepository interface {
	Create(ctx context.Context, m *domain.ChatMessage) error
	ListByRoom(ctx context.Context, roomID int64, page, size int) ([]domain.ChatMessage, int64, error)
	LastMessages(ctx context.Context, roomIDs []int64) (map[int64]domain.ChatMessage, error)
	UnreadCounts(ctx context.Context, roomIDs []int64, memberID int64) (map[int64]int64, error)
	MarkRead(ctx context.Context, roomID, readerID int64) (int64, error)
}

// BlockRepository persists member blocks.
type BlockRepository interface {
	Create(ctx context.Context, b *domain.Block) error
	Delete(ctx context.Context, memberID, blockedMemberID int64) error
	Exists(ctx context.Context, memberID, blockedMemberID int64) (bool, error)
	// EitherBlocked reports whether either side has blocked the other.
	EitherBlocked(ctx context.Context, a, b int64) (bool, error)
	ListByMember(ctx context.Context, memberID int64) ([]domain.Block, error)
	BlockedIDs(ctx context.Context, memberID int64) ([]int64, error)
}

// ReportRepository persists moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) error
	Exists(ctx context.Context, reporterID int64, targetType string, targetID int64) (bool, error)
}

// PriceOfferRepository persists price offers on negotiable posts.
type PriceOfferRepository interface {
	Create(ctx context.Context, o *domain.PriceOffer) error
	GetByID(ctx context.Context, id int64) (*domain.PriceOffer, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.PriceOffer, error)
	HasPending(ctx context.Context, postID, offererID int64) (bool, error)
	// Accept and Reject flip a PENDING offer and report whether the row
	// changed, so concurrent decisions resolve to exactly one winner.
	Accept(ctx context.Context, id int64) (bool, error)
	Reject(ctx context.Context, id int64) (bool, error)
}

// ReviewRepository persists trade reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	Exists(ctx context.Context, chatRoomID, reviewerID int64) (bool, error)
	ListByReviewee(ctx context.Context, revieweeID int64, page, size int) ([]domain.Review, int64, error)
	AverageScore(ctx context.Context, revieweeID int64) (float64, int64, error)
}
