package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/identity"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/jwt"
	"github.com/AC-trading/ac-trading/pkg/log"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// respondError maps service and repository sentinels onto the HTTP
// error envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrMemberNotFound):
		response.NotFound(c, "MEMBER_NOT_FOUND", "member not found")
	case errors.Is(err, repository.ErrCategoryNotFound):
		response.NotFound(c, "CATEGORY_NOT_FOUND", "category not found")
	case errors.Is(err, repository.ErrPostNotFound):
		response.NotFound(c, "POST_NOT_FOUND", "post not found")
	case errors.Is(err, repository.ErrRoomNotFound):
		response.NotFound(c, "CHAT_ROOM_NOT_FOUND", "chat room not found")
	case errors.Is(err, repository.ErrOfferNotFound):
		response.NotFound(c, "PRICE_OFFER_NOT_FOUND", "price offer not found")

	case errors.Is(err, repository.ErrNicknameTaken):
		response.Conflict(c, "nickname already taken")
	case errors.Is(err, repository.ErrAlreadyLiked):
		response.Conflict(c, "post already liked")
	case errors.Is(err, repository.ErrAlreadyBlocked):
		response.Conflict(c, "member already blocked")
	case errors.Is(err, repository.ErrAlreadyReported):
		response.Conflict(c, "already reported")
	case errors.Is(err, repository.ErrAlreadyReviewed):
		response.Conflict(c, "already reviewed")
	case errors.Is(err, repository.ErrAlreadyOffered):
		response.Conflict(c, "pending price offer already exists")

	case errors.Is(err, repository.ErrNotLiked),
		errors.Is(err, repository.ErrNotBlocked):
		response.BadRequest(c, err.Error())

	case errors.Is(err, service.ErrProfileEditCooldown),
		errors.Is(err, service.ErrBumpCooldown):
		response.Error(c, 429, "TOO_MANY_REQUESTS", err.Error())

	case errors.Is(err, service.ErrNotPostOwner),
		errors.Is(err, service.ErrNotRoomOwner),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrBlocked):
		response.Forbidden(c, err.Error())

	case errors.Is(err, service.ErrOwnPost),
		errors.Is(err, service.ErrSelfTarget),
		errors.Is(err, service.ErrInvalidMessage),
		errors.Is(err, service.ErrSetupRequired),
		errors.Is(err, service.ErrTradeNotCompleted),
		errors.Is(err, service.ErrTradeCompleted),
		errors.Is(err, service.ErrRoomLeft),
		errors.Is(err, service.ErrNotNegotiable),
		errors.Is(err, service.ErrPostNotAvailable),
		errors.Is(err, service.ErrOfferNotPending):
		response.BadRequest(c, err.Error())

	case errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrExpiredToken),
		errors.Is(err, jwt.ErrRevokedToken):
		response.Unauthorized(c, err.Error())

	case errors.Is(err, identity.ErrUnknownProvider),
		errors.Is(err, identity.ErrExchangeFailed):
		response.Unauthorized(c, "social login failed")

	default:
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("unhandled error")
		response.InternalError(c, "internal server error")
	}
}
