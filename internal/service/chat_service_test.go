package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/events"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/chatwire"
)

// Fakes embed the interface they stand in for; only the methods the
// code under test touches are implemented.

type fakeRoomRepo struct {
	repository.ChatRoomRepository
	rooms  map[int64]*domain.ChatRoom
	nextID int64
}

func newFakeRoomRepo(rooms ...*domain.ChatRoom) *fakeRoomRepo {
	repo := &fakeRoomRepo{rooms: make(map[int64]*domain.ChatRoom)}
	for _, r := range rooms {
		repo.rooms[r.ID] = r
		if r.ID > repo.nextID {
			repo.nextID = r.ID
		}
	}
	return repo
}

func (f *fakeRoomRepo) Create(_ context.Context, r *domain.ChatRoom) error {
	f.nextID++
	r.ID = f.nextID
	f.rooms[r.ID] = r
	return nil
}

func (f *fakeRoomRepo) GetByID(_ context.Context, id int64) (*domain.ChatRoom, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return room, nil
}

func (f *fakeRoomRepo) GetByPostAndApplicant(_ context.Context, postID, applicantID int64) (*domain.ChatRoom, error) {
	for _, r := range f.rooms {
		if r.PostID == postID && r.ApplicantID == applicantID {
			return r, nil
		}
	}
	return nil, repository.ErrRoomNotFound
}

func (f *fakeRoomRepo) Update(_ context.Context, r *domain.ChatRoom) error {
	f.rooms[r.ID] = r
	return nil
}

func (f *fakeRoomRepo) Touch(_ context.Context, _ int64) error { return nil }

type fakeMessageRepo struct {
	repository.ChatMessageRepository
	created  []*domain.ChatMessage
	markRead int64
}

func (f *fakeMessageRepo) Create(_ context.Context, m *domain.ChatMessage) error {
	m.ID = int64(len(f.created) + 1)
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMessageRepo) LastMessages(_ context.Context, _ []int64) (map[int64]domain.ChatMessage, error) {
	return map[int64]domain.ChatMessage{}, nil
}

func (f *fakeMessageRepo) UnreadCounts(_ context.Context, _ []int64, _ int64) (map[int64]int64, error) {
	return map[int64]int64{}, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, _, _ int64) (int64, error) {
	return f.markRead, nil
}

type fakePostRepo struct {
	repository.PostRepository
	posts    map[int64]*domain.Post
	statuses map[int64]string
}

func newFakePostRepo(posts ...*domain.Post) *fakePostRepo {
	repo := &fakePostRepo{posts: make(map[int64]*domain.Post), statuses: make(map[int64]string)}
	for _, p := range posts {
		repo.posts[p.ID] = p
	}
	return repo
}

func (f *fakePostRepo) GetByID(_ context.Context, id int64) (*domain.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return post, nil
}

func (f *fakePostRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	f.statuses[id] = status
	return nil
}

type fakeBlockRepo struct {
	repository.BlockRepository
	blocked bool
}

func (f *fakeBlockRepo) EitherBlocked(_ context.Context, _, _ int64) (bool, error) {
	return f.blocked, nil
}

type fakeMemberService struct {
	MemberService
	members map[string]*domain.Member
}

func newFakeMemberService(members ...*domain.Member) *fakeMemberService {
	svc := &fakeMemberService{members: make(map[string]*domain.Member)}
	for _, m := range members {
		svc.members[m.UUID] = m
	}
	return svc
}

func (f *fakeMemberService) Resolve(_ context.Context, uuid string) (*domain.Member, error) {
	m, ok := f.members[uuid]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	return m, nil
}

func (f *fakeMemberService) ResolveByID(_ context.Context, id int64) (*domain.Member, error) {
	for _, m := range f.members {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repository.ErrMemberNotFound
}

type fakeProducer struct {
	produced []*events.ChatEvent
}

func (f *fakeProducer) Produce(_ context.Context, event *events.ChatEvent) error {
	f.produced = append(f.produced, event)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func member(id int64, uuid, nickname string) *domain.Member {
	return &domain.Member{ID: id, UUID: uuid, Nickname: nickname, MannerScore: 100}
}

func newChatFixture(rooms *fakeRoomRepo, msgs *fakeMessageRepo, posts *fakePostRepo, blocks *fakeBlockRepo, members *fakeMemberService) (ChatService, *fakeProducer) {
	producer := &fakeProducer{}
	svc := NewChatService(rooms, msgs, posts, blocks, members, NewProfanityFilter(nil), producer)
	return svc, producer
}

func TestSaveMessageMasksProfanity(t *testing.T) {
	rooms := newFakeRoomRepo(&domain.ChatRoom{ID: 1, PostID: 10, OwnerID: 1, ApplicantID: 2})
	msgs := &fakeMessageRepo{}
	members := newFakeMemberService(member(1, "uuid-1", "Tom"), member(2, "uuid-2", "Isabelle"))
	svc, producer := newChatFixture(rooms, msgs, newFakePostRepo(), &fakeBlockRepo{}, members)

	wire, err := svc.SaveMessage(context.Background(), 2, &chatwire.SendRequest{
		ChatRoomID: 1,
		Content:    "you are a scammer",
	})
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	if wire.Content == nil || *wire.Content != "you are a *******" {
		t.Fatalf("content = %v, want masked", wire.Content)
	}
	// Type defaults to TEXT when omitted.
	if wire.MessageType != chatwire.MessageTypeText {
		t.Fatalf("message type = %q", wire.MessageType)
	}
	if wire.SenderNickname != "Isabelle" {
		t.Fatalf("sender nickname = %q", wire.SenderNickname)
	}
	if len(msgs.created) != 1 {
		t.Fatalf("%d messages persisted", len(msgs.created))
	}
	if len(producer.produced) != 1 || producer.produced[0].Type != events.EventMessageSent {
		t.Fatalf("produced events %+v", producer.produced)
	}
	if producer.produced[0].TargetID != 1 {
		t.Fatalf("event target = %d, want the counterpart", producer.produced[0].TargetID)
	}
}

func TestSaveMessageRejections(t *testing.T) {
	left := domain.ChatRoom{ID: 2, PostID: 10, OwnerID: 1, ApplicantID: 3}
	now := left.CreatedAt
	left.ApplicantLeftAt = &now
	rooms := newFakeRoomRepo(&domain.ChatRoom{ID: 1, PostID: 10, OwnerID: 1, ApplicantID: 2}, &left)
	members := newFakeMemberService(member(1, "uuid-1", "Tom"))
	svc, _ := newChatFixture(rooms, &fakeMessageRepo{}, newFakePostRepo(), &fakeBlockRepo{}, members)

	tests := []struct {
		name     string
		senderID int64
		req      chatwire.SendRequest
		wantErr  error
	}{
		{"outsider", 9, chatwire.SendRequest{ChatRoomID: 1, Content: "hi"}, ErrNotParticipant},
		{"left room", 3, chatwire.SendRequest{ChatRoomID: 2, Content: "hi"}, ErrRoomLeft},
		{"blank text", 1, chatwire.SendRequest{ChatRoomID: 1, Content: "   "}, ErrInvalidMessage},
		{"text with image", 1, chatwire.SendRequest{ChatRoomID: 1, Content: "hi", ImageURL: "x"}, ErrInvalidMessage},
		{"image without url", 1, chatwire.SendRequest{ChatRoomID: 1, MessageType: chatwire.MessageTypeImage}, ErrInvalidMessage},
		{"unknown type", 1, chatwire.SendRequest{ChatRoomID: 1, MessageType: "VIDEO", Content: "x"}, ErrInvalidMessage},
		{"missing room", 1, chatwire.SendRequest{ChatRoomID: 99, Content: "hi"}, repository.ErrRoomNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveMessage(context.Background(), tt.senderID, &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SaveMessage = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMarkMessagesRead(t *testing.T) {
	rooms := newFakeRoomRepo(&domain.ChatRoom{ID: 1, PostID: 10, OwnerID: 1, ApplicantID: 2})
	msgs := &fakeMessageRepo{markRead: 3}
	members := newFakeMemberService(member(1, "uuid-1", "Tom"))
	svc, producer := newChatFixture(rooms, msgs, newFakePostRepo(), &fakeBlockRepo{}, members)

	changed, err := svc.MarkMessagesRead(context.Background(), 1, 2)
	if err != nil || changed != 3 {
		t.Fatalf("MarkMessagesRead = (%d, %v)", changed, err)
	}
	if len(producer.produced) != 1 || producer.produced[0].Type != events.EventMessagesRead {
		t.Fatalf("produced events %+v", producer.produced)
	}

	if _, err := svc.MarkMessagesRead(context.Background(), 1, 9); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider MarkMessagesRead = %v, want ErrNotParticipant", err)
	}

	// A read that flips nothing emits no event.
	msgs.markRead = 0
	before := len(producer.produced)
	if _, err := svc.MarkMessagesRead(context.Background(), 1, 2); err != nil {
		t.Fatalf("MarkMessagesRead: %v", err)
	}
	if len(producer.produced) != before {
		t.Fatal("no-op read produced an event")
	}
}

func TestCreateRoomRules(t *testing.T) {
	post := &domain.Post{ID: 10, MemberID: 1, ItemName: "royal crown"}
	owner := member(1, "uuid-1", "Tom")
	applicant := member(2, "uuid-2", "Isabelle")
	fresh := member(3, "uuid-3", "") // never completed setup

	t.Run("own post", func(t *testing.T) {
		svc, _ := newChatFixture(newFakeRoomRepo(), &fakeMessageRepo{}, newFakePostRepo(post), &fakeBlockRepo{}, newFakeMemberService(owner))
		if _, err := svc.CreateRoom(context.Background(), "uuid-1", 10); !errors.Is(err, ErrOwnPost) {
			t.Fatalf("CreateRoom(own post) = %v, want ErrOwnPost", err)
		}
	})

	t.Run("setup required", func(t *testing.T) {
		svc, _ := newChatFixture(newFakeRoomRepo(), &fakeMessageRepo{}, newFakePostRepo(post), &fakeBlockRepo{}, newFakeMemberService(fresh))
		if _, err := svc.CreateRoom(context.Background(), "uuid-3", 10); !errors.Is(err, ErrSetupRequired) {
			t.Fatalf("CreateRoom(fresh member) = %v, want ErrSetupRequired", err)
		}
	})

	t.Run("blocked", func(t *testing.T) {
		svc, _ := newChatFixture(newFakeRoomRepo(), &fakeMessageRepo{}, newFakePostRepo(post), &fakeBlockRepo{blocked: true}, newFakeMemberService(applicant))
		if _, err := svc.CreateRoom(context.Background(), "uuid-2", 10); !errors.Is(err, ErrBlocked) {
			t.Fatalf("CreateRoom(blocked) = %v, want ErrBlocked", err)
		}
	})

	t.Run("creates then reuses", func(t *testing.T) {
		rooms := newFakeRoomRepo()
		svc, _ := newChatFixture(rooms, &fakeMessageRepo{}, newFakePostRepo(post), &fakeBlockRepo{}, newFakeMemberService(applicant))

		resp, err := svc.CreateRoom(context.Background(), "uuid-2", 10)
		if err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}
		if resp.IsOwner {
			t.Fatal("applicant's view flagged as owner")
		}

		// Simulate an earlier leave; reapplying revives the same room.
		room := rooms.rooms[resp.ID]
		now := room.CreatedAt
		room.ApplicantLeftAt = &now

		again, err := svc.CreateRoom(context.Background(), "uuid-2", 10)
		if err != nil {
			t.Fatalf("second CreateRoom: %v", err)
		}
		if again.ID != resp.ID {
			t.Fatalf("second CreateRoom made room %d, want %d", again.ID, resp.ID)
		}
		if room.ApplicantLeftAt != nil {
			t.Fatal("re-entering did not clear the leave mark")
		}
	})
}

func TestCompleteSyncsPostStatus(t *testing.T) {
	post := &domain.Post{ID: 10, MemberID: 1, Status: domain.PostStatusReserved}
	rooms := newFakeRoomRepo(&domain.ChatRoom{ID: 1, PostID: 10, OwnerID: 1, ApplicantID: 2, Status: domain.RoomStatusReserved})
	posts := newFakePostRepo(post)
	svc, producer := newChatFixture(rooms, &fakeMessageRepo{}, posts, &fakeBlockRepo{}, newFakeMemberService(member(1, "uuid-1", "Tom"), member(2, "uuid-2", "Isabelle")))

	resp, err := svc.Complete(context.Background(), "uuid-1", 1)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Status != domain.RoomStatusCompleted {
		t.Fatalf("room status = %q", resp.Status)
	}
	if posts.statuses[10] != domain.PostStatusCompleted {
		t.Fatalf("post status = %q, want COMPLETED", posts.statuses[10])
	}
	if len(producer.produced) != 1 || producer.produced[0].Type != events.EventTradeCompleted {
		t.Fatalf("produced events %+v", producer.produced)
	}

	// Completing twice is refused, and only the owner may complete.
	if _, err := svc.Complete(context.Background(), "uuid-1", 1); !errors.Is(err, ErrTradeCompleted) {
		t.Fatalf("second Complete = %v, want ErrTradeCompleted", err)
	}
	rooms.rooms[1].Status = domain.RoomStatusActive
	if _, err := svc.Complete(context.Background(), "uuid-2", 1); !errors.Is(err, ErrNotRoomOwner) {
		t.Fatalf("applicant Complete = %v, want ErrNotRoomOwner", err)
	}
}

type fakeReviewRepo struct {
	repository.ReviewRepository
	created []*domain.Review
	avg     float64
	count   int64
}

func (f *fakeReviewRepo) Create(_ context.Context, r *domain.Review) error {
	f.created = append(f.created, r)
	return nil
}

func (f *fakeReviewRepo) AverageScore(_ context.Context, _ int64) (float64, int64, error) {
	return f.avg, f.count, nil
}

type fakeMemberRepo struct {
	repository.MemberRepository
	mannerScores map[int64]int
}

func (f *fakeMemberRepo) UpdateMannerScore(_ context.Context, id int64, score int) error {
	if f.mannerScores == nil {
		f.mannerScores = make(map[int64]int)
	}
	f.mannerScores[id] = score
	return nil
}

func TestReviewRecomputesMannerScore(t *testing.T) {
	rooms := newFakeRoomRepo(&domain.ChatRoom{ID: 1, PostID: 10, OwnerID: 1, ApplicantID: 2, Status: domain.RoomStatusCompleted})
	reviews := &fakeReviewRepo{avg: 4.4, count: 2}
	memberRepo := &fakeMemberRepo{}
	svc := NewReviewService(reviews, rooms, memberRepo, newFakeMemberService(member(2, "uuid-2", "Isabelle")))

	err := svc.Create(context.Background(), "uuid-2", 1, &domain.ReviewRequest{Score: 4, Content: "smooth trade"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(reviews.created) != 1 {
		t.Fatalf("%d reviews persisted", len(reviews.created))
	}
	if got := reviews.created[0].RevieweeID; got != 1 {
		t.Fatalf("reviewee = %d, want the counterpart", got)
	}
	// 4.4 average maps to round(4.4 * 20) = 88.
	if got := memberRepo.mannerScores[1]; got != 88 {
		t.Fatalf("manner score = %d, want 88", got)
	}
}

func TestReviewRequiresCompletedTrade(t *testing.T) {
	rooms := newFakeRoomRepo(&domain.ChatRoom{ID: 1, PostID: 10, OwnerID: 1, ApplicantID: 2, Status: domain.RoomStatusActive})
	svc := NewReviewService(&fakeReviewRepo{}, rooms, &fakeMemberRepo{}, newFakeMemberService(member(2, "uuid-2", "Isabelle"), member(9, "uuid-9", "Blathers")))

	err := svc.Create(context.Background(), "uuid-2", 1, &domain.ReviewRequest{Score: 5})
	if !errors.Is(err, ErrTradeNotCompleted) {
		t.Fatalf("Create(active trade) = %v, want ErrTradeNotCompleted", err)
	}

	rooms.rooms[1].Status = domain.RoomStatusCompleted
	err = svc.Create(context.Background(), "uuid-9", 1, &domain.ReviewRequest{Score: 5})
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("Create(outsider) = %v, want ErrNotParticipant", err)
	}
}
