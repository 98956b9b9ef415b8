package domain

import "time"

// Block hides a member's posts from the blocker and stops new chat
// rooms between the pair.
type Block struct {
	ID              int64     `gorm:"primaryKey"`
	MemberID        int64     `gorm:"not null;uniqueIndex:idx_blocks_member_blocked"`
	BlockedMemberID int64     `gorm:"not null;uniqueIndex:idx_blocks_member_blocked"`
	CreatedAt       time.Time `json:"createdAt"`

	BlockedMember *Member `gorm:"foreignKey:BlockedMemberID"`
}

func (Block) TableName() string { return "blocks" }

// BlockRequest blocks a member by id.
type BlockRequest struct {
	MemberID int64 `json:"memberId" binding:"required"`
}

// BlockResponse is one entry in the blocker's block list.
type BlockResponse struct {
	MemberID   int64     `json:"memberId"`
	Nickname   string    `json:"nickname"`
	IslandName string    `json:"islandName"`
	BlockedAt  time.Time `json:"blockedAt"`
}

// BlockListResponse wraps the block list.
type BlockListResponse struct {
	Blocks []BlockResponse `json:"blocks"`
}

// ToResponse builds the list entry. BlockedMember must be preloaded.
func (b *Block) ToResponse() BlockResponse {
	resp := BlockResponse{
		MemberID:  b.BlockedMemberID,
		BlockedAt: b.CreatedAt,
	}
	if b.BlockedMember != nil {
		resp.Nickname = b.BlockedMember.Nickname
		resp.IslandName = b.BlockedMember.IslandName
	}
	return resp
}
