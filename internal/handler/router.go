package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/pkg/middleware"
)

// Router bundles every handler and wires the route table.
type Router struct {
	Auth     *AuthHandler
	Member   *MemberHandler
	Category *CategoryHandler
	Post     *PostHandler
	Chat     *ChatHandler
	Offer    *PriceOfferHandler
	Block    *BlockHandler
	Report   *ReportHandler
	Review   *ReviewHandler
	Image    *ImageHandler
	WS       *WSHandler
}

// RegisterRoutes attaches the full route table to the engine.
func (r *Router) RegisterRoutes(engine *gin.Engine, auth *middleware.AuthMiddleware) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	engine.GET("/ws/chat", r.WS.HandleWebSocket)

	api := engine.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", r.Auth.Login)
		authGroup.POST("/refresh", r.Auth.Refresh)
		authGroup.POST("/logout", r.Auth.Logout)
	}

	api.GET("/categories", r.Category.List)

	members := api.Group("/members")
	{
		members.GET("/me", auth.RequireAuth(), r.Member.Me)
		members.POST("/me/profile", auth.RequireAuth(), r.Member.SetupProfile)
		members.PUT("/me/profile", auth.RequireAuth(), r.Member.UpdateProfile)
		members.DELETE("/me", auth.RequireAuth(), r.Member.Withdraw)
		members.GET("/:id", r.Member.GetProfile)
		members.GET("/:id/reviews", r.Member.ListReviews)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", auth.OptionalAuth(), r.Post.List)
		posts.POST("", auth.RequireAuth(), r.Post.Create)
		posts.GET("/me", auth.RequireAuth(), r.Post.ListMine)
		posts.GET("/liked", auth.RequireAuth(), r.Post.ListLiked)
		posts.GET("/:id", auth.OptionalAuth(), r.Post.Get)
		posts.PUT("/:id", auth.RequireAuth(), r.Post.Update)
		posts.DELETE("/:id", auth.RequireAuth(), r.Post.Delete)
		posts.POST("/:id/bump", auth.RequireAuth(), r.Post.Bump)
		posts.POST("/:id/like", auth.RequireAuth(), r.Post.Like)
		posts.DELETE("/:id/like", auth.RequireAuth(), r.Post.Unlike)
		posts.POST("/:id/price-offer", auth.RequireAuth(), r.Offer.Create)
		posts.GET("/:id/price-offer", auth.RequireAuth(), r.Offer.ListByPost)
	}

	offers := api.Group("/price-offers", auth.RequireAuth())
	{
		offers.POST("/:id/accept", r.Offer.Accept)
		offers.POST("/:id/reject", r.Offer.Reject)
	}

	rooms := api.Group("/chat/rooms", auth.RequireAuth())
	{
		rooms.POST("", r.Chat.CreateRoom)
		rooms.GET("", r.Chat.ListRooms)
		rooms.GET("/:id", r.Chat.GetRoom)
		rooms.DELETE("/:id", r.Chat.Leave)
		rooms.GET("/:id/messages", r.Chat.ListMessages)
		rooms.POST("/:id/reserve", r.Chat.Reserve)
		rooms.DELETE("/:id/reserve", r.Chat.Unreserve)
		rooms.POST("/:id/complete", r.Chat.Complete)
		rooms.POST("/:id/review", r.Review.Create)
	}

	blocks := api.Group("/blocks", auth.RequireAuth())
	{
		blocks.POST("", r.Block.Block)
		blocks.GET("", r.Block.List)
		blocks.DELETE("/:id", r.Block.Unblock)
	}

	api.POST("/reports", auth.RequireAuth(), r.Report.Report)
	api.POST("/images/presign", auth.RequireAuth(), r.Image.Presign)
}
