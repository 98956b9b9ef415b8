package domain

import (
	"time"

	"gorm.io/gorm"
)

// Price offer lifecycle. A PENDING offer is either accepted or rejected
// by the post owner; handled offers never change again.
const (
	OfferStatusPending  = "PENDING"
	OfferStatusAccepted = "ACCEPTED"
	OfferStatusRejected = "REJECTED"
)

// PriceOffer is a buyer's counter-price on a negotiable listing.
type PriceOffer struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	PostID       int64  `gorm:"index;not null" json:"postId"`
	OffererID    int64  `gorm:"index;not null" json:"offererId"`
	PostOwnerID  int64  `gorm:"index;not null" json:"postOwnerId"`
	OfferedPrice int64  `gorm:"not null" json:"offeredPrice"`
	CurrencyType string `gorm:"type:varchar(10);not null" json:"currencyType"`
	Status       string `gorm:"type:varchar(10);index;not null;default:PENDING" json:"status"`

	Offerer *Member `gorm:"foreignKey:OffererID" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PriceOffer) TableName() string { return "price_offers" }

// PriceOfferCreateRequest proposes a price on a post. An empty currency
// falls back to the post's own.
type PriceOfferCreateRequest struct {
	OfferedPrice int64  `json:"offeredPrice" binding:"required,min=1"`
	CurrencyType string `json:"currencyType" binding:"omitempty,oneof=BELLS MILES"`
}

// PriceOfferResponse is one entry on a post's offer list.
type PriceOfferResponse struct {
	ID                int64     `json:"id"`
	PostID            int64     `json:"postId"`
	OffererID         int64     `json:"offererId"`
	OffererNickname   string    `json:"offererNickname"`
	OffererIslandName string    `json:"offererIslandName"`
	OfferedPrice      int64     `json:"offeredPrice"`
	CurrencyType      string    `json:"currencyType"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

// PriceOfferAcceptResponse points the owner at the chat room opened for
// the agreed trade.
type PriceOfferAcceptResponse struct {
	OfferID    int64 `json:"offerId"`
	ChatRoomID int64 `json:"chatRoomId"`
}

// PriceOfferListResponse lists a post's offers, newest first.
type PriceOfferListResponse struct {
	Offers []PriceOfferResponse `json:"offers"`
}

// ToResponse builds the list entry. Offerer must be preloaded.
func (o *PriceOffer) ToResponse() PriceOfferResponse {
	resp := PriceOfferResponse{
		ID:           o.ID,
		PostID:       o.PostID,
		OffererID:    o.OffererID,
		OfferedPrice: o.OfferedPrice,
		CurrencyType: o.CurrencyType,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
	}
	if o.Offerer != nil {
		resp.OffererNickname = o.Offerer.Nickname
		resp.OffererIslandName = o.Offerer.IslandName
	}
	return resp
}
