package service

import "errors"

var (
	ErrProfileEditCooldown = errors.New("profile can only be edited once per day")
	ErrBumpCooldown        = errors.New("post can only be bumped once per day")
	ErrNotPostOwner        = errors.New("not the post owner")
	ErrNotRoomOwner        = errors.New("only the post owner can manage the trade")
	ErrOwnPost             = errors.New("cannot open a chat on your own post")
	ErrBlocked             = errors.New("blocked member")
	ErrNotParticipant      = errors.New("not a participant of this chat room")
	ErrInvalidMessage      = errors.New("invalid message payload")
	ErrSelfTarget          = errors.New("cannot target yourself")
	ErrTradeNotCompleted   = errors.New("trade is not completed yet")
	ErrTradeCompleted      = errors.New("trade is already completed")
	ErrSetupRequired       = errors.New("profile setup required")
	ErrRoomLeft            = errors.New("chat room was left")
	ErrNotNegotiable       = errors.New("post does not accept price offers")
	ErrPostNotAvailable    = errors.New("post is no longer available")
	ErrOfferNotPending     = errors.New("price offer was already handled")
)
