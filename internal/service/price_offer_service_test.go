package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/events"
	"github.com/AC-trading/ac-trading/internal/repository"
)

type fakeOfferRepo struct {
	repository.PriceOfferRepository
	offers map[int64]*domain.PriceOffer
	nextID int64
}

func newFakeOfferRepo(offers ...*domain.PriceOffer) *fakeOfferRepo {
	repo := &fakeOfferRepo{offers: make(map[int64]*domain.PriceOffer)}
	for _, o := range offers {
		repo.offers[o.ID] = o
		if o.ID > repo.nextID {
			repo.nextID = o.ID
		}
	}
	return repo
}

func (f *fakeOfferRepo) Create(ctx context.Context, o *domain.PriceOffer) error {
	pending, err := f.HasPending(ctx, o.PostID, o.OffererID)
	if err != nil {
		return err
	}
	if pending {
		return repository.ErrAlreadyOffered
	}
	f.nextID++
	o.ID = f.nextID
	f.offers[o.ID] = o
	return nil
}

func (f *fakeOfferRepo) GetByID(_ context.Context, id int64) (*domain.PriceOffer, error) {
	offer, ok := f.offers[id]
	if !ok {
		return nil, repository.ErrOfferNotFound
	}
	return offer, nil
}

func (f *fakeOfferRepo) ListByPost(_ context.Context, postID int64) ([]domain.PriceOffer, error) {
	var out []domain.PriceOffer
	for _, o := range f.offers {
		if o.PostID == postID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) HasPending(_ context.Context, postID, offererID int64) (bool, error) {
	for _, o := range f.offers {
		if o.PostID == postID && o.OffererID == offererID && o.Status == domain.OfferStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOfferRepo) Accept(_ context.Context, id int64) (bool, error) {
	return f.decide(id, domain.OfferStatusAccepted), nil
}

func (f *fakeOfferRepo) Reject(_ context.Context, id int64) (bool, error) {
	return f.decide(id, domain.OfferStatusRejected), nil
}

func (f *fakeOfferRepo) decide(id int64, status string) bool {
	offer, ok := f.offers[id]
	if !ok || offer.Status != domain.OfferStatusPending {
		return false
	}
	offer.Status = status
	return true
}

func negotiablePost() *domain.Post {
	return &domain.Post{
		ID:              10,
		MemberID:        1,
		ItemName:        "royal crown",
		Price:           1200000,
		CurrencyType:    domain.CurrencyBells,
		Status:          domain.PostStatusAvailable,
		PriceNegotiable: true,
	}
}

func newOfferFixture(offers *fakeOfferRepo, rooms *fakeRoomRepo, posts *fakePostRepo, members *fakeMemberService) (PriceOfferService, *fakeProducer) {
	producer := &fakeProducer{}
	svc := NewPriceOfferService(offers, posts, rooms, members, producer)
	return svc, producer
}

func TestCreatePriceOffer(t *testing.T) {
	offers := newFakeOfferRepo()
	members := newFakeMemberService(member(1, "uuid-1", "Tom"), member(2, "uuid-2", "Isabelle"))
	svc, producer := newOfferFixture(offers, newFakeRoomRepo(), newFakePostRepo(negotiablePost()), members)

	resp, err := svc.Create(context.Background(), "uuid-2", 10, &domain.PriceOfferCreateRequest{OfferedPrice: 900000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.Status != domain.OfferStatusPending {
		t.Fatalf("status = %q, want PENDING", resp.Status)
	}
	// Omitted currency falls back to the post's.
	if resp.CurrencyType != domain.CurrencyBells {
		t.Fatalf("currency = %q, want BELLS", resp.CurrencyType)
	}
	if resp.OffererNickname != "Isabelle" {
		t.Fatalf("offerer nickname = %q", resp.OffererNickname)
	}
	if len(producer.produced) != 1 || producer.produced[0].Type != events.EventOfferReceived {
		t.Fatalf("produced events %+v", producer.produced)
	}
	if producer.produced[0].TargetID != 1 {
		t.Fatalf("event target = %d, want the post owner", producer.produced[0].TargetID)
	}

	// A second pending offer on the same post is refused.
	_, err = svc.Create(context.Background(), "uuid-2", 10, &domain.PriceOfferCreateRequest{OfferedPrice: 950000})
	if !errors.Is(err, repository.ErrAlreadyOffered) {
		t.Fatalf("duplicate Create = %v, want ErrAlreadyOffered", err)
	}
}

func TestCreatePriceOfferRejections(t *testing.T) {
	fixedPrice := negotiablePost()
	fixedPrice.ID = 11
	fixedPrice.PriceNegotiable = false
	reserved := negotiablePost()
	reserved.ID = 12
	reserved.Status = domain.PostStatusReserved

	members := newFakeMemberService(member(1, "uuid-1", "Tom"), member(2, "uuid-2", "Isabelle"), member(3, "uuid-3", ""))
	svc, _ := newOfferFixture(newFakeOfferRepo(), newFakeRoomRepo(), newFakePostRepo(negotiablePost(), fixedPrice, reserved), members)

	req := domain.PriceOfferCreateRequest{OfferedPrice: 100}
	tests := []struct {
		name    string
		uuid    string
		postID  int64
		wantErr error
	}{
		{"not negotiable", "uuid-2", 11, ErrNotNegotiable},
		{"own post", "uuid-1", 10, ErrOwnPost},
		{"reserved post", "uuid-2", 12, ErrPostNotAvailable},
		{"setup required", "uuid-3", 10, ErrSetupRequired},
		{"missing post", "uuid-2", 99, repository.ErrPostNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.uuid, tt.postID, &req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAcceptPriceOffer(t *testing.T) {
	offers := newFakeOfferRepo(&domain.PriceOffer{
		ID: 1, PostID: 10, OffererID: 2, PostOwnerID: 1,
		OfferedPrice: 900000, CurrencyType: domain.CurrencyBells,
		Status: domain.OfferStatusPending,
	})
	rooms := newFakeRoomRepo()
	members := newFakeMemberService(member(1, "uuid-1", "Tom"), member(2, "uuid-2", "Isabelle"))
	svc, producer := newOfferFixture(offers, rooms, newFakePostRepo(negotiablePost()), members)

	// Only the post owner may settle an offer.
	if _, err := svc.Accept(context.Background(), "uuid-2", 1); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("offerer Accept = %v, want ErrNotPostOwner", err)
	}

	resp, err := svc.Accept(context.Background(), "uuid-1", 1)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if offers.offers[1].Status != domain.OfferStatusAccepted {
		t.Fatalf("offer status = %q, want ACCEPTED", offers.offers[1].Status)
	}
	room, ok := rooms.rooms[resp.ChatRoomID]
	if !ok {
		t.Fatalf("no room created for accepted offer")
	}
	if room.OwnerID != 1 || room.ApplicantID != 2 || room.PostID != 10 {
		t.Fatalf("room participants %+v", room)
	}
	if len(producer.produced) != 1 || producer.produced[0].Type != events.EventOfferAccepted {
		t.Fatalf("produced events %+v", producer.produced)
	}

	// Settling twice is refused.
	if _, err := svc.Accept(context.Background(), "uuid-1", 1); !errors.Is(err, ErrOfferNotPending) {
		t.Fatalf("second Accept = %v, want ErrOfferNotPending", err)
	}
}

func TestAcceptReusesExistingRoom(t *testing.T) {
	leftAt := time.Now()
	existing := &domain.ChatRoom{ID: 7, PostID: 10, OwnerID: 1, ApplicantID: 2, Status: domain.RoomStatusActive, ApplicantLeftAt: &leftAt}
	offers := newFakeOfferRepo(&domain.PriceOffer{
		ID: 1, PostID: 10, OffererID: 2, PostOwnerID: 1,
		OfferedPrice: 900000, Status: domain.OfferStatusPending,
	})
	rooms := newFakeRoomRepo(existing)
	svc, _ := newOfferFixture(offers, rooms, newFakePostRepo(negotiablePost()), newFakeMemberService(member(1, "uuid-1", "Tom")))

	resp, err := svc.Accept(context.Background(), "uuid-1", 1)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if resp.ChatRoomID != 7 {
		t.Fatalf("room id = %d, want the existing room", resp.ChatRoomID)
	}
	if existing.ApplicantLeftAt != nil {
		t.Fatal("accepting did not clear the offerer's leave mark")
	}
}

func TestRejectPriceOffer(t *testing.T) {
	offers := newFakeOfferRepo(&domain.PriceOffer{
		ID: 1, PostID: 10, OffererID: 2, PostOwnerID: 1,
		OfferedPrice: 900000, Status: domain.OfferStatusPending,
	})
	rooms := newFakeRoomRepo()
	members := newFakeMemberService(member(1, "uuid-1", "Tom"), member(2, "uuid-2", "Isabelle"))
	svc, producer := newOfferFixture(offers, rooms, newFakePostRepo(negotiablePost()), members)

	if err := svc.Reject(context.Background(), "uuid-2", 1); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("offerer Reject = %v, want ErrNotPostOwner", err)
	}
	if err := svc.Reject(context.Background(), "uuid-1", 1); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if offers.offers[1].Status != domain.OfferStatusRejected {
		t.Fatalf("offer status = %q, want REJECTED", offers.offers[1].Status)
	}
	// Rejecting opens no room.
	if len(rooms.rooms) != 0 {
		t.Fatalf("%d rooms created on reject", len(rooms.rooms))
	}
	if len(producer.produced) != 1 || producer.produced[0].Type != events.EventOfferRejected {
		t.Fatalf("produced events %+v", producer.produced)
	}
	if err := svc.Reject(context.Background(), "uuid-1", 1); !errors.Is(err, ErrOfferNotPending) {
		t.Fatalf("second Reject = %v, want ErrOfferNotPending", err)
	}
}

func TestListOffersOwnerOnly(t *testing.T) {
	offers := newFakeOfferRepo(&domain.PriceOffer{
		ID: 1, PostID: 10, OffererID: 2, PostOwnerID: 1,
		OfferedPrice: 900000, Status: domain.OfferStatusPending,
	})
	members := newFakeMemberService(member(1, "uuid-1", "Tom"), member(2, "uuid-2", "Isabelle"))
	svc, _ := newOfferFixture(offers, newFakeRoomRepo(), newFakePostRepo(negotiablePost()), members)

	if _, err := svc.ListByPost(context.Background(), "uuid-2", 10); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("offerer ListByPost = %v, want ErrNotPostOwner", err)
	}
	resp, err := svc.ListByPost(context.Background(), "uuid-1", 10)
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if len(resp.Offers) != 1 || resp.Offers[0].OfferedPrice != 900000 {
		t.Fatalf("offers %+v", resp.Offers)
	}
}
