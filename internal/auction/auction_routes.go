package auction

import (
	"github.com/ParthVaghani-21/campuslife/config"
	"github.com/ParthVaghani-21/campuslife/internal/event"
	mw "github.com/ParthVaghani-21/campuslife/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuctionRoutes sets up all auction-related routes
func AuctionRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewAuctionRepository(db)
	eventRepo := event.NewEventRepository(db)
	engine := NewEngine(repo)
	controller := NewAuctionController(engine, eventRepo, appConfig)

	// Public read-only routes
	router.GET("/auctions", controller.GetAllAuctions)
	router.GET("/auctions/:auction_id", controller.GetAuction)
	router.GET("/auctions/:auction_id/session", controller.GetSession)
	router.GET("/auctions/:auction_id/bids", controller.ListBids)

	// Moderator routes
	adminRoutes := router.Group("/")
	adminRoutes.Use(mw.AuthMiddleware(appConfig.JWT.Secret))
	adminRoutes.Use(mw.AdminMiddleware())
	{
		adminRoutes.POST("/auctions", controller.CreateAuction)
		adminRoutes.POST("/auctions/:auction_id/start", controller.StartAuction)
		adminRoutes.POST("/auctions/:auction_id/end", controller.EndAuction)
		adminRoutes.POST("/auctions/:auction_id/cancel", controller.CancelAuction)
		adminRoutes.PATCH("/auctions/:auction_id/settings", controller.UpdateSettings)
		adminRoutes.PUT("/auctions/:auction_id/category-rules", controller.SetCategoryRule)

		adminRoutes.POST("/auctions/:auction_id/players", controller.AddPlayers)
		adminRoutes.DELETE("/auctions/:auction_id/players", controller.RemovePlayers)
		adminRoutes.POST("/auctions/:auction_id/teams", controller.AddTeams)
		adminRoutes.DELETE("/auctions/:auction_id/teams", controller.RemoveTeams)

		adminRoutes.POST("/auctions/:auction_id/bidding/start", controller.StartBidding)
		adminRoutes.POST("/auctions/:auction_id/bidding/next", controller.NextPlayer)

		adminRoutes.POST("/auctions/:auction_id/bids", controller.PlaceBid)
		adminRoutes.POST("/auctions/:auction_id/bids/:bid_id/finalize", controller.FinalizeBid)
		adminRoutes.POST("/auctions/:auction_id/assign", controller.ManualAssign)
		adminRoutes.POST("/auctions/:auction_id/assign-icons", controller.AssignIconPlayers)

		adminRoutes.GET("/auctions/:auction_id/queue", controller.GetQueue)
	}
}
