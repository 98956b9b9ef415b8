package service

import (
	"context"
	"math"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// reviewServiceImpl implements ReviewService.
type reviewServiceImpl struct {
	reviews repository.ReviewRepository
	rooms   repository.ChatRoomRepository
	members repository.MemberRepository
	resolve MemberService
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	rooms repository.ChatRoomRepository,
	members repository.MemberRepository,
	resolve MemberService,
) ReviewService {
	return &reviewServiceImpl{
		reviews: reviews,
		rooms:   rooms,
		members: members,
		resolve: resolve,
	}
}

// Create files a review for a completed trade and recomputes the
// reviewee's manner score.
func (s *reviewServiceImpl) Create(ctx context.Context, memberUUID string, roomID int64, req *domain.ReviewRequest) error {
	l := log.Ctx(ctx)

	member, err := s.resolve.Resolve(ctx, memberUUID)
	if err != nil {
		return err
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(member.ID) {
		return ErrNotParticipant
	}
	if room.Status != domain.RoomStatusCompleted {
		return ErrTradeNotCompleted
	}

	revieweeID := room.OtherParticipant(member.ID)
	err = s.reviews.Create(ctx, &domain.Review{
		ChatRoomID: roomID,
		ReviewerID: member.ID,
		RevieweeID: revieweeID,
		Score:      req.Score,
		Content:    req.Content,
	})
	if err != nil {
		return err
	}

	if err := s.recomputeMannerScore(ctx, revieweeID); err != nil {
		l.Warn().Err(err).Int64(log.FieldMemberID, revieweeID).Msg("failed to recompute manner score")
	}
	l.Info().Int64(log.FieldRoomID, roomID).Int("score", req.Score).Msg("review created")
	return nil
}

func (s *reviewServiceImpl) ListByMember(ctx context.Context, memberID int64, page, size int) (*domain.ReviewListResponse, error) {
	if size <= 0 {
		size = 20
	}
	reviews, total, err := s.reviews.ListByReviewee(ctx, memberID, page, size)
	if err != nil {
		return nil, err
	}
	avg, _, err := s.reviews.AverageScore(ctx, memberID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ReviewResponse, len(reviews))
	for i := range reviews {
		out[i] = reviews[i].ToResponse()
	}
	return &domain.ReviewListResponse{
		Reviews:      out,
		AverageScore: avg,
		Page:         domain.NewPage(page, size, total),
	}, nil
}

// recomputeMannerScore maps the 1..5 review average onto the 0..100
// manner scale. Members without reviews keep the default score.
func (s *reviewServiceImpl) recomputeMannerScore(ctx context.Context, memberID int64) error {
	avg, count, err := s.reviews.AverageScore(ctx, memberID)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	score := int(math.Round(avg * 20))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return s.members.UpdateMannerScore(ctx, memberID, score)
}
