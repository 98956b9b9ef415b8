package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/AC-trading/ac-trading/pkg/database"
)

// Post types. SELL offers an item, BUY asks for one.
const (
	PostTypeSell = "SELL"
	PostTypeBuy  = "BUY"
)

// Trade currencies.
const (
	CurrencyBells = "BELLS"
	CurrencyMiles = "MILES"
)

// Post lifecycle. Status moves with the attached chat rooms: reserving a
// room reserves the post, completing a trade completes it.
const (
	PostStatusAvailable = "AVAILABLE"
	PostStatusReserved  = "RESERVED"
	PostStatusCompleted = "COMPLETED"
)

const bumpCooldown = 24 * time.Hour

// Post is a trade listing.
type Post struct {
	ID              int64                `gorm:"primaryKey" json:"id"`
	MemberID        int64                `gorm:"index;not null" json:"memberId"`
	CategoryID      int64                `gorm:"index;not null" json:"categoryId"`
	PostType        string               `gorm:"type:varchar(10);index;not null" json:"postType"`
	Status          string               `gorm:"type:varchar(20);index;not null;default:AVAILABLE" json:"status"`
	ItemName        string               `gorm:"type:varchar(100);not null" json:"itemName"`
	Description     string               `gorm:"type:text" json:"description"`
	CurrencyType    string               `gorm:"type:varchar(10);not null" json:"currencyType"`
	Price           int64                `gorm:"not null;default:0" json:"price"`
	PriceNegotiable bool                 `gorm:"not null;default:false" json:"priceNegotiable"`
	ImageURLs       database.StringArray `gorm:"type:text" json:"imageUrls"`
	LikeCount       int                  `gorm:"not null;default:0" json:"likeCount"`
	ViewCount       int                  `gorm:"not null;default:0" json:"viewCount"`
	BumpedAt        *time.Time           `gorm:"index" json:"bumpedAt"`

	Member   *Member   `gorm:"foreignKey:MemberID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Post) TableName() string { return "posts" }

// CanBump enforces the 24h bump cooldown. A never-bumped post can
// always be bumped.
func (p *Post) CanBump(now time.Time) bool {
	if p.BumpedAt == nil {
		return true
	}
	return p.BumpedAt.Add(bumpCooldown).Before(now)
}

// SortKey is the feed ordering timestamp: bump time when bumped,
// creation time otherwise.
func (p *Post) SortKey() time.Time {
	if p.BumpedAt != nil {
		return *p.BumpedAt
	}
	return p.CreatedAt
}

// PostLike is one member's like on one post.
type PostLike struct {
	ID        int64     `gorm:"primaryKey"`
	MemberID  int64     `gorm:"not null;uniqueIndex:idx_post_likes_member_post"`
	PostID    int64     `gorm:"not null;uniqueIndex:idx_post_likes_member_post"`
	CreatedAt time.Time
}

func (PostLike) TableName() string { return "post_likes" }

// PostCreateRequest creates a listing.
type PostCreateRequest struct {
	CategoryID      int64    `json:"categoryId" binding:"required"`
	PostType        string   `json:"postType" binding:"required,oneof=SELL BUY"`
	ItemName        string   `json:"itemName" binding:"required,min=1,max=100"`
	Description     string   `json:"description" binding:"omitempty,max=2000"`
	CurrencyType    string   `json:"currencyType" binding:"required,oneof=BELLS MILES"`
	Price           int64    `json:"price" binding:"min=0"`
	PriceNegotiable bool     `json:"priceNegotiable"`
	ImageURLs       []string `json:"imageUrls" binding:"omitempty,max=5,dive,url"`
}

// PostUpdateRequest edits a listing.
type PostUpdateRequest struct {
	CategoryID      int64    `json:"categoryId" binding:"required"`
	ItemName        string   `json:"itemName" binding:"required,min=1,max=100"`
	Description     string   `json:"description" binding:"omitempty,max=2000"`
	CurrencyType    string   `json:"currencyType" binding:"required,oneof=BELLS MILES"`
	Price           int64    `json:"price" binding:"min=0"`
	PriceNegotiable bool     `json:"priceNegotiable"`
	ImageURLs       []string `json:"imageUrls" binding:"omitempty,max=5,dive,url"`
}

// PostFilter narrows the feed query. Price bounds only apply together
// with a currency type, since bells and miles prices are not comparable.
type PostFilter struct {
	CategoryID   int64
	PostType     string
	Status       string
	CurrencyType string
	MinPrice     *int64
	MaxPrice     *int64
	Keyword      string
	ViewerID     int64 // excludes posts from members the viewer blocked
	Page         int
	Size         int
}

// PostResponse is the detail view of a listing.
type PostResponse struct {
	ID              int64      `json:"id"`
	PostType        string     `json:"postType"`
	Status          string     `json:"status"`
	CategoryID      int64      `json:"categoryId"`
	CategoryName    string     `json:"categoryName"`
	ItemName        string     `json:"itemName"`
	Description     string     `json:"description"`
	CurrencyType    string     `json:"currencyType"`
	Price           int64      `json:"price"`
	PriceNegotiable bool       `json:"priceNegotiable"`
	ImageURLs       []string   `json:"imageUrls"`
	LikeCount       int        `json:"likeCount"`
	ViewCount       int        `json:"viewCount"`
	Liked           bool       `json:"liked"`
	Author          PostAuthor `json:"author"`
	BumpedAt        *time.Time `json:"bumpedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// PostAuthor is the seller summary embedded in post views.
type PostAuthor struct {
	ID          int64  `json:"id"`
	Nickname    string `json:"nickname"`
	IslandName  string `json:"islandName"`
	MannerScore int    `json:"mannerScore"`
}

// PostListResponse pages the feed.
type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
	Page
}

// ToResponse builds the detail view. Member and Category must be
// preloaded.
func (p *Post) ToResponse(liked bool) PostResponse {
	resp := PostResponse{
		ID:              p.ID,
		PostType:        p.PostType,
		Status:          p.Status,
		CategoryID:      p.CategoryID,
		ItemName:        p.ItemName,
		Description:     p.Description,
		CurrencyType:    p.CurrencyType,
		Price:           p.Price,
		PriceNegotiable: p.PriceNegotiable,
		ImageURLs:       []string(p.ImageURLs),
		LikeCount:       p.LikeCount,
		ViewCount:       p.ViewCount,
		Liked:           liked,
		BumpedAt:        p.BumpedAt,
		CreatedAt:       p.CreatedAt,
	}
	if p.ImageURLs == nil {
		resp.ImageURLs = []string{}
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	if p.Member != nil {
		resp.Author = PostAuthor{
			ID:          p.Member.ID,
			Nickname:    p.Member.Nickname,
			IslandName:  p.Member.IslandName,
			MannerScore: p.Member.MannerScore,
		}
	}
	return resp
}
