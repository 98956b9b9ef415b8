package domain

import "time"

// Review is a post-trade rating from one participant about the other.
// One review per (room, reviewer); only completed rooms accept reviews.
type Review struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	ChatRoomID int64  `gorm:"not null;uniqueIndex:idx_reviews_room_reviewer" json:"chatRoomId"`
	ReviewerID int64  `gorm:"not null;uniqueIndex:idx_reviews_room_reviewer" json:"reviewerId"`
	RevieweeID int64  `gorm:"index;not null" json:"revieweeId"`
	Score      int    `gorm:"not null" json:"score"`
	Content    string `gorm:"type:varchar(500)" json:"content"`

	Reviewer *Member `gorm:"foreignKey:ReviewerID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Review) TableName() string { return "reviews" }

// ReviewRequest rates the other participant after a completed trade.
type ReviewRequest struct {
	Score   int    `json:"score" binding:"required,min=1,max=5"`
	Content string `json:"content" binding:"omitempty,max=500"`
}

// ReviewResponse is one entry on a member's review page.
type ReviewResponse struct {
	ID               int64     `json:"id"`
	Score            int       `json:"score"`
	Content          string    `json:"content"`
	ReviewerNickname string    `json:"reviewerNickname"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ReviewListResponse pages a member's received reviews.
type ReviewListResponse struct {
	Reviews      []ReviewResponse `json:"reviews"`
	AverageScore float64          `json:"averageScore"`
	Page
}

// ToResponse builds the list entry. Reviewer must be preloaded.
func (r *Review) ToResponse() ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		Score:     r.Score,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
	if r.Reviewer != nil {
		resp.ReviewerNickname = r.Reviewer.Nickname
	}
	return resp
}
