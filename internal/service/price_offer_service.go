package service

import (
	"context"
	"errors"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/events"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// priceOfferServiceImpl implements PriceOfferService.
type priceOfferServiceImpl struct {
	offers   repository.PriceOfferRepository
	posts    repository.PostRepository
	rooms    repository.ChatRoomRepository
	members  MemberService
	producer events.EventProducer
}

// NewPriceOfferService creates a new price offer service.
func NewPriceOfferService(
	offers repository.PriceOfferRepository,
	posts repository.PostRepository,
	rooms repository.ChatRoomRepository,
	members MemberService,
	producer events.EventProducer,
) PriceOfferService {
	return &priceOfferServiceImpl{
		offers:   offers,
		posts:    posts,
		rooms:    rooms,
		members:  members,
		producer: producer,
	}
}

// Create files a price offer against a negotiable, still-available post.
// A member carries at most one pending offer per post.
func (s *priceOfferServiceImpl) Create(ctx context.Context, memberUUID string, postID int64, req *domain.PriceOfferCreateRequest) (*domain.PriceOfferResponse, error) {
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
	if !post.PriceNegotiable {
		return nil, ErrNotNegotiable
	}
	if post.MemberID == member.ID {
		return nil, ErrOwnPost
	}
	if post.Status != domain.PostStatusAvailable {
		return nil, ErrPostNotAvailable
	}

	currency := req.CurrencyType
	if currency == "" {
		currency = post.CurrencyType
	}
	offer := &domain.PriceOffer{
		PostID:       postID,
		OffererID:    member.ID,
		PostOwnerID:  post.MemberID,
		OfferedPrice: req.OfferedPrice,
		CurrencyType: currency,
		Status:       domain.OfferStatusPending,
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}
	l.Info().Int64("offer_id", offer.ID).Int64(log.FieldPostID, postID).
		Int64("offered_price", offer.OfferedPrice).Msg("price offer created")

	s.produce(ctx, &events.ChatEvent{
		Type:     events.EventOfferReceived,
		PostID:   postID,
		ActorID:  member.ID,
		TargetID: post.MemberID,
		OfferID:  offer.ID,
	})

	offer.Offerer = member
	resp := offer.ToResponse()
	return &resp, nil
}

// ListByPost returns a post's offers, visible to the post owner only.
func (s *priceOfferServiceImpl) ListByPost(ctx context.Context, memberUUID string, postID int64) (*domain.PriceOfferListResponse, error) {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.MemberID != member.ID {
		return nil, ErrNotPostOwner
	}

	offers, err := s.offers.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PriceOfferResponse, len(offers))
	for i := range offers {
		out[i] = offers[i].ToResponse()
	}
	return &domain.PriceOfferListResponse{Offers: out}, nil
}

// Accept settles a pending offer. Only the post owner may accept, and
// an offer can only be settled once; on success the chat room between
// owner and offerer is opened, or reused if the offerer already has one.
func (s *priceOfferServiceImpl) Accept(ctx context.Context, memberUUID string, offerID int64) (*domain.PriceOfferAcceptResponse, error) {
	l := log.Ctx(ctx)

	member, offer, err := s.ownedPendingOffer(ctx, memberUUID, offerID)
	if err != nil {
		return nil, err
	}
	changed, err := s.offers.Accept(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrOfferNotPending
	}

	roomID, err := s.roomForOffer(ctx, offer)
	if err != nil {
		return nil, err
	}
	l.Info().Int64("offer_id", offerID).Int64(log.FieldRoomID, roomID).Msg("price offer accepted")

	s.produce(ctx, &events.ChatEvent{
		Type:       events.EventOfferAccepted,
		ChatRoomID: roomID,
		PostID:     offer.PostID,
		ActorID:    member.ID,
		TargetID:   offer.OffererID,
		OfferID:    offerID,
	})
	return &domain.PriceOfferAcceptResponse{OfferID: offerID, ChatRoomID: roomID}, nil
}

// Reject settles a pending offer without opening a room.
func (s *priceOfferServiceImpl) Reject(ctx context.Context, memberUUID string, offerID int64) error {
	member, offer, err := s.ownedPendingOffer(ctx, memberUUID, offerID)
	if err != nil {
		return err
	}
	changed, err := s.offers.Reject(ctx, offerID)
	if err != nil {
		return err
	}
	if !changed {
		return ErrOfferNotPending
	}
	l := log.Ctx(ctx)
	l.Info().Int64("offer_id", offerID).Msg("price offer rejected")

	s.produce(ctx, &events.ChatEvent{
		Type:     events.EventOfferRejected,
		PostID:   offer.PostID,
		ActorID:  member.ID,
		TargetID: offer.OffererID,
		OfferID:  offerID,
	})
	return nil
}

func (s *priceOfferServiceImpl) ownedPendingOffer(ctx context.Context, memberUUID string, offerID int64) (*domain.Member, *domain.PriceOffer, error) {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, nil, err
	}
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, nil, err
	}
	if offer.PostOwnerID != member.ID {
		return nil, nil, ErrNotPostOwner
	}
	if offer.Status != domain.OfferStatusPending {
		return nil, nil, ErrOfferNotPending
	}
	return member, offer, nil
}

// roomForOffer opens the chat room for an accepted offer, reusing the
// existing (post, offerer) room when there is one.
func (s *priceOfferServiceImpl) roomForOffer(ctx context.Context, offer *domain.PriceOffer) (int64, error) {
	room, err := s.rooms.GetByPostAndApplicant(ctx, offer.PostID, offer.OffererID)
	if err == nil {
		// Re-opening clears a previous leave by the offerer.
		if room.ApplicantLeftAt != nil {
			room.ApplicantLeftAt = nil
			if err := s.rooms.Update(ctx, room); err != nil {
				return 0, err
			}
		}
		return room.ID, nil
	}
	if !errors.Is(err, repository.ErrRoomNotFound) {
		return 0, err
	}

	room = &domain.ChatRoom{
		PostID:      offer.PostID,
		OwnerID:     offer.PostOwnerID,
		ApplicantID: offer.OffererID,
		Status:      domain.RoomStatusActive,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return 0, err
	}
	l := log.Ctx(ctx)
	l.Info().Int64(log.FieldRoomID, room.ID).Int64(log.FieldPostID, offer.PostID).Msg("chat room created for accepted offer")
	return room.ID, nil
}

func (s *priceOfferServiceImpl) produce(ctx context.Context, event *events.ChatEvent) {
	if err := s.producer.Produce(ctx, event); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("event_type", event.Type).Msg("failed to produce chat event")
	}
}
