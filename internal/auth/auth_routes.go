package auth

import (
	"github.com/ParthVaghani-21/campuslife/config"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes sets up authentication routes.
func RegisterAuthRoutes(router *gin.RouterGroup, appConfig *config.Config) {
	controller := NewAuthController(appConfig)

	router.POST("/login", controller.Login)
}
