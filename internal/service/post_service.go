package service

import (
	"context"
	"time"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/database"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// postServiceImpl implements PostService.
type postServiceImpl struct {
	posts      repository.PostRepository
	likes      repository.PostLikeRepository
	categories repository.CategoryRepository
	members    MemberService
}

// NewPostService creates a new post service.
func NewPostService(
	posts repository.PostRepository,
	likes repository.PostLikeRepository,
	categories repository.CategoryRepository,
	members MemberService,
) PostService {
	return &postServiceImpl{
		posts:      posts,
		likes:      likes,
		categories: categories,
		members:    members,
	}
}

func (s *postServiceImpl) Create(ctx context.Context, memberUUID string, req *domain.PostCreateRequest) (*domain.PostResponse, error) {
	l := log.Ctx(ctx)

	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, err
	}
	if member.NeedsSetup() {
		return nil, ErrSetupRequired
	}
	if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	post := &domain.Post{
		MemberID:        member.ID,
		CategoryID:      req.CategoryID,
		PostType:        req.PostType,
		Status:          domain.PostStatusAvailable,
		ItemName:        req.ItemName,
		Description:     req.Description,
		CurrencyType:    req.CurrencyType,
		Price:           req.Price,
		PriceNegotiable: req.PriceNegotiable,
		ImageURLs:       database.StringArray(req.ImageURLs),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	l.Info().Int64(log.FieldPostID, post.ID).Str(log.FieldMemberUUID, memberUUID).Msg("post created")

	return s.Get(ctx, memberUUID, post.ID)
}

func (s *postServiceImpl) Get(ctx context.Context, viewerUUID string, postID int64) (*domain.PostResponse, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked := false
	if viewerUUID != "" {
		viewer, err := s.members.Resolve(ctx, viewerUUID)
		if err == nil {
			liked, _ = s.likes.Exists(ctx, viewer.ID, postID)
			if viewer.ID != post.MemberID {
				if err := s.posts.IncrementViewCount(ctx, postID); err != nil {
					l := log.Ctx(ctx)
					l.Warn().Err(err).Int64(log.FieldPostID, postID).Msg("failed to increment view count")
				}
			}
		}
	}

	resp := post.ToResponse(liked)
	return &resp, nil
}

func (s *postServiceImpl) List(ctx context.Context, viewerUUID string, filter domain.PostFilter) (*domain.PostListResponse, error) {
	if filter.Size <= 0 {
		filter.Size = 20
	}
	if filter.Page < 0 {
		filter.Page = 0
	}

	var viewerID int64
	if viewerUUID != "" {
		if viewer, err := s.members.Resolve(ctx, viewerUUID); err == nil {
			viewerID = viewer.ID
		}
	}
	filter.ViewerID = viewerID

	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.buildListResponse(ctx, viewerID, posts, filter.Page, filter.Size, total)
}

func (s *postServiceImpl) ListMine(ctx context.Context, memberUUID string, page, size int) (*domain.PostListResponse, error) {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 20
	}
	posts, total, err := s.posts.ListByMember(ctx, member.ID, page, size)
	if err != nil {
		return nil, err
	}
	return s.buildListResponse(ctx, member.ID, posts, page, size, total)
}

func (s *postServiceImpl) ListLiked(ctx context.Context, memberUUID string, page, size int) (*domain.PostListResponse, error) {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 20
	}
	posts, total, err := s.posts.ListLikedByMember(ctx, member.ID, page, size)
	if err != nil {
		return nil, err
	}
	return s.buildListResponse(ctx, member.ID, posts, page, size, total)
}

func (s *postServiceImpl) Update(ctx context.Context, memberUUID string, postID int64, req *domain.PostUpdateRequest) (*domain.PostResponse, error) {
	post, err := s.ownedPost(ctx, memberUUID, postID)
	if err != nil {
		return nil, err
	}
	if post.Status == domain.PostStatusCompleted {
		return nil, ErrTradeCompleted
	}
	if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	post.CategoryID = req.CategoryID
	post.ItemName = req.ItemName
	post.Description = req.Description
	post.CurrencyType = req.CurrencyType
	post.Price = req.Price
	post.PriceNegotiable = req.PriceNegotiable
	post.ImageURLs = database.StringArray(req.ImageURLs)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.Get(ctx, memberUUID, postID)
}

func (s *postServiceImpl) Delete(ctx context.Context, memberUUID string, postID int64) error {
	if _, err := s.ownedPost(ctx, memberUUID, postID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	l := log.Ctx(ctx)
	l.Info().Int64(log.FieldPostID, postID).Msg("post deleted")
	return nil
}

// Bump moves the listing back to the top of the feed, once per day.
func (s *postServiceImpl) Bump(ctx context.Context, memberUUID string, postID int64) error {
	post, err := s.ownedPost(ctx, memberUUID, postID)
	if err != nil {
		return err
	}
	now := time.Now()
	if !post.CanBump(now) {
		return ErrBumpCooldown
	}
	return s.posts.Bump(ctx, postID, now)
}

func (s *postServiceImpl) Like(ctx context.Context, memberUUID string, postID int64) error {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.likes.Like(ctx, member.ID, postID)
}

func (s *postServiceImpl) Unlike(ctx context.Context, memberUUID string, postID int64) error {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return err
	}
	return s.likes.Unlike(ctx, member.ID, postID)
}

func (s *postServiceImpl) ownedPost(ctx context.Context, memberUUID string, postID int64) (*domain.Post, error) {
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
	return post, nil
}

func (s *postServiceImpl) buildListResponse(ctx context.Context, viewerID int64, posts []domain.Post, page, size int, total int64) (*domain.PostListResponse, error) {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked, err := s.likes.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.PostResponse, len(posts))
	for i := range posts {
		out[i] = posts[i].ToResponse(liked[posts[i].ID])
	}
	return &domain.PostListResponse{
		Posts: out,
		Page:  domain.NewPage(page, size, total),
	}, nil
}
