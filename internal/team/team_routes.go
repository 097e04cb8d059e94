package team

import (
	"github.com/ParthVaghani-21/campuslife/config"
	mw "github.com/ParthVaghani-21/campuslife/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TeamRoutes sets up all team-related routes
func TeamRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewTeamRepository(db)
	controller := NewTeamController(repo)

	router.GET("/teams", controller.GetAllTeams)
	router.GET("/teams/:team_id", controller.GetTeamByID)

	adminRoutes := router.Group("/")
	adminRoutes.Use(mw.AuthMiddleware(appConfig.JWT.Secret))
	adminRoutes.Use(mw.AdminMiddleware())
	{
		adminRoutes.POST("/teams", controller.CreateTeam)
	}
}
