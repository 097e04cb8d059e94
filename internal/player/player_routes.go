package player

import (
	"github.com/ParthVaghani-21/campuslife/config"
	mw "github.com/ParthVaghani-21/campuslife/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PlayerRoutes sets up all registration-related routes
func PlayerRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewPlayerRepository(db)
	controller := NewPlayerController(repo)

	router.GET("/players", controller.GetAllRegistrations)
	router.GET("/players/:player_id", controller.GetRegistration)

	adminRoutes := router.Group("/")
	adminRoutes.Use(mw.AuthMiddleware(appConfig.JWT.Secret))
	adminRoutes.Use(mw.AdminMiddleware())
	{
		adminRoutes.POST("/players", controller.CreateRegistration)
	}
}
