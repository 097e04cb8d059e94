package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ParthVaghani-21/campuslife/config"
	"github.com/ParthVaghani-21/campuslife/internal/auction"
	"github.com/ParthVaghani-21/campuslife/internal/auth"
	"github.com/ParthVaghani-21/campuslife/internal/event"
	"github.com/ParthVaghani-21/campuslife/internal/player"
	"github.com/ParthVaghani-21/campuslife/internal/team"
)

func SetupRoutes() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	appConfig := config.GetConfig()
	db := config.DB

	// Welcome page
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`
			<html>
				<head><title>CampusLife</title></head>
				<body style="text-align:center; margin-top: 40px;">
					<h1>CampusLife Auction Service 🏏</h1>
					<p><a href="/swagger/index.html">API documentation</a></p>
				</body>
			</html>
		`))
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	auth.RegisterAuthRoutes(authGroup, appConfig)

	event.EventRoutes(api, db, appConfig)
	player.PlayerRoutes(api, db, appConfig)
	team.TeamRoutes(api, db, appConfig)
	auction.AuctionRoutes(api, db, appConfig)

	return r
}
