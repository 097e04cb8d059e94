package main

import (
	"log"

	"github.com/ParthVaghani-21/campuslife/config"
	_ "github.com/ParthVaghani-21/campuslife/docs"
	"github.com/ParthVaghani-21/campuslife/internal/auction"
	"github.com/ParthVaghani-21/campuslife/internal/event"
	"github.com/ParthVaghani-21/campuslife/internal/player"
	"github.com/ParthVaghani-21/campuslife/internal/team"
	"github.com/ParthVaghani-21/campuslife/routes"
)

// @title CampusLife Auction API
// @version 1.0
// @description Player-auction service for the CampusLife student portal.
// @host localhost:8090
// @BasePath /api
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&event.Event{},
		&player.Registration{},
		&team.Team{},
		&auction.Auction{}, &auction.AuctionPlayer{}, &auction.AuctionTeam{},
		&auction.CategoryRule{}, &auction.Bid{}, &auction.AuctionSession{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r := routes.SetupRoutes()

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
