package event

import (
	"github.com/ParthVaghani-21/campuslife/config"
	mw "github.com/ParthVaghani-21/campuslife/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EventRoutes sets up event lookup routes
func EventRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewEventRepository(db)
	controller := NewEventController(repo)

	router.GET("/events", controller.GetAllEvents)
	router.GET("/events/:event_id", controller.GetEvent)

	adminRoutes := router.Group("/")
	adminRoutes.Use(mw.AuthMiddleware(appConfig.JWT.Secret))
	adminRoutes.Use(mw.AdminMiddleware())
	{
		adminRoutes.POST("/events", controller.CreateEvent)
	}
}
