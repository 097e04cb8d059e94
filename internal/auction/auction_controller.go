package auction

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ParthVaghani-21/campuslife/config"
	"github.com/ParthVaghani-21/campuslife/internal/event"
	"github.com/ParthVaghani-21/campuslife/pkg/responses"
	"github.com/ParthVaghani-21/campuslife/pkg/validator"
	"github.com/gin-gonic/gin"
)

// AuctionController handles auction-related HTTP requests
type AuctionController struct {
	engine    *Engine
	eventRepo event.EventRepository
	appConfig *config.Config
}

// NewAuctionController creates a new auction controller
func NewAuctionController(engine *Engine, eventRepo event.EventRepository, appConfig *config.Config) *AuctionController {
	return &AuctionController{
		engine:    engine,
		eventRepo: eventRepo,
		appConfig: appConfig,
	}
}

// respondEngineError maps the engine's typed errors onto HTTP statuses.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		responses.SendError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrBidRejected):
		responses.SendError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrNotAvailable),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrCapacityExceeded):
		responses.SendError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		responses.SendError(c, http.StatusBadRequest, err.Error())
	default:
		responses.SendError(c, http.StatusInternalServerError, "Operation failed: "+err.Error())
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// --- DTOs for requests ---

type CreateAuctionRequest struct {
	EventID            uint             `json:"event_id" binding:"required"`
	ScheduledAt        time.Time        `json:"scheduled_at"`
	BasePrice          *float64         `json:"base_price" binding:"omitempty,gte=0"`
	BidIncrement       *float64         `json:"bid_increment" binding:"omitempty,gte=0"`
	TimeLimitPerPlayer *int             `json:"time_limit_per_player" binding:"omitempty,gte=0"`
	Settings           *AuctionSettings `json:"settings"`
}

type PoolPlayersRequest struct {
	PlayerIDs []uint `json:"player_ids" binding:"required,min=1"`
}

type PoolTeamsRequest struct {
	TeamIDs []uint `json:"team_ids" binding:"required,min=1"`
}

type CategoryRuleRequest struct {
	Category string  `json:"category" binding:"required"`
	MinBid   float64 `json:"min_bid" binding:"gte=0"`
	SquadCap int     `json:"squad_cap" binding:"gte=0"`
}

type StartBiddingRequest struct {
	PlayerID uint `json:"player_id" binding:"required"`
}

type PlaceBidRequest struct {
	PlayerID uint    `json:"player_id" binding:"required"`
	TeamID   uint    `json:"team_id" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

type ManualAssignRequest struct {
	PlayerID uint    `json:"player_id" binding:"required"`
	TeamID   uint    `json:"team_id" binding:"required"`
	Price    float64 `json:"price" binding:"gte=0"`
}

// --- Ledger handlers ---

// CreateAuction godoc
// @Summary Create an auction
// @Description Creates an upcoming auction attached to an event. Omitted pricing fields fall back to configured defaults.
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction body CreateAuctionRequest true "Auction configuration"
// @Success 201 {object} responses.SuccessResponse{data=Auction} "Auction created"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 404 {object} responses.ErrorResponse "Event not found"
// @Security ApiKeyAuth
// @Router /auctions [post]
func (ac *AuctionController) CreateAuction(c *gin.Context) {
	var req CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}

	ev, err := ac.eventRepo.GetEventByID(req.EventID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to look up event: "+err.Error())
		return
	}
	if ev == nil {
		responses.NotFound(c, "Event")
		return
	}

	a := Auction{
		EventID:            req.EventID,
		ScheduledAt:        req.ScheduledAt,
		BasePrice:          ac.appConfig.Auction.DefaultBasePrice,
		BidIncrement:       ac.appConfig.Auction.DefaultBidIncrement,
		TimeLimitPerPlayer: ac.appConfig.Auction.DefaultTimeLimit,
	}
	if req.BasePrice != nil {
		a.BasePrice = *req.BasePrice
	}
	if req.BidIncrement != nil {
		a.BidIncrement = *req.BidIncrement
	}
	if req.TimeLimitPerPlayer != nil {
		a.TimeLimitPerPlayer = *req.TimeLimitPerPlayer
	}
	if req.Settings != nil {
		a.Settings = *req.Settings
	}

	if err := ac.engine.CreateAuction(&a); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create auction: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Auction created successfully", a)
}

// GetAuction godoc
// @Summary Get an auction
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Success 200 {object} responses.SuccessResponse{data=Auction}
// @Failure 404 {object} responses.ErrorResponse "Auction not found"
// @Router /auctions/{auction_id} [get]
func (ac *AuctionController) GetAuction(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	a, err := ac.engine.GetAuction(auctionID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Auction retrieved successfully", a)
}

// GetAllAuctions godoc
// @Summary List auctions
// @Tags Auctions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param status query string false "Filter by status (upcoming/live/completed/cancelled)"
// @Success 200 {object} responses.PaginatedResponse{data=[]Auction}
// @Router /auctions [get]
func (ac *AuctionController) GetAllAuctions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	auctions, total, err := ac.engine.repo.GetAllAuctions(page, limit, c.Query("status"))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve auctions: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "", auctions, total, page, limit)
}

// StartAuction godoc
// @Summary Start an auction
// @Description Moves an upcoming auction live and seeds session stats from the player pool.
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Success 200 {object} responses.SuccessResponse{data=Auction}
// @Failure 404 {object} responses.ErrorResponse "Auction not found"
// @Failure 409 {object} responses.ErrorResponse "Auction is not upcoming"
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/start [post]
func (ac *AuctionController) StartAuction(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	a, err := ac.engine.StartAuction(auctionID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Auction started", a)
}

// EndAuction godoc
// @Summary End a live auction
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Success 200 {object} responses.SuccessResponse{data=Auction}
// @Failure 409 {object} responses.ErrorResponse "Auction is not live"
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/end [post]
func (ac *AuctionController) EndAuction(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	a, err := ac.engine.EndAuction(auctionID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Auction completed", a)
}

// CancelAuction godoc
// @Summary Cancel an auction
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Success 200 {object} responses.SuccessResponse{data=Auction}
// @Failure 409 {object} responses.ErrorResponse "Auction already finished"
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/cancel [post]
func (ac *AuctionController) CancelAuction(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	a, err := ac.engine.CancelAuction(auctionID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Auction cancelled", a)
}

// UpdateSettings godoc
// @Summary Update auction settings
// @Description Merges the supplied fields into the auction configuration; omitted fields are untouched.
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param patch body SettingsPatch true "Fields to merge"
// @Success 200 {object} responses.SuccessResponse{data=Auction}
// @Failure 404 {object} responses.ErrorResponse "Auction not found"
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/settings [patch]
func (ac *AuctionController) UpdateSettings(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var patch SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	a, err := ac.engine.UpdateSettings(auctionID, patch)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Settings updated", a)
}

// SetCategoryRule godoc
// @Summary Configure a category rule
// @Description Sets the minimum bid and squad cap for one player category.
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param rule body CategoryRuleRequest true "Category rule"
// @Success 200 {object} responses.SuccessResponse{data=CategoryRule}
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/category-rules [put]
func (ac *AuctionController) SetCategoryRule(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req CategoryRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	rule, err := ac.engine.SetCategoryRule(auctionID, req.Category, req.MinBid, req.SquadCap)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Category rule saved", rule)
}

// --- Pool handlers ---

// AddPlayers godoc
// @Summary Add players to the auction pool
// @Description Set-union: already-present players are ignored.
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param players body PoolPlayersRequest true "Player IDs"
// @Success 200 {object} responses.SuccessResponse
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/players [post]
func (ac *AuctionController) AddPlayers(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req PoolPlayersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	added, err := ac.engine.AddPlayers(auctionID, req.PlayerIDs)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Players added to pool", gin.H{"added": added})
}

// RemovePlayers godoc
// @Summary Remove players from the auction pool
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param players body PoolPlayersRequest true "Player IDs"
// @Success 200 {object} responses.SuccessResponse
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/players [delete]
func (ac *AuctionController) RemovePlayers(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req PoolPlayersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	removed, err := ac.engine.RemovePlayers(auctionID, req.PlayerIDs)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Players removed from pool", gin.H{"removed": removed})
}

// AddTeams godoc
// @Summary Add teams to the auction pool
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param teams body PoolTeamsRequest true "Team IDs"
// @Success 200 {object} responses.SuccessResponse
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/teams [post]
func (ac *AuctionController) AddTeams(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req PoolTeamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	added, err := ac.engine.AddTeams(auctionID, req.TeamIDs)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Teams added to pool", gin.H{"added": added})
}

// RemoveTeams godoc
// @Summary Remove teams from the auction pool
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param teams body PoolTeamsRequest true "Team IDs"
// @Success 200 {object} responses.SuccessResponse
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/teams [delete]
func (ac *AuctionController) RemoveTeams(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req PoolTeamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	removed, err := ac.engine.RemoveTeams(auctionID, req.TeamIDs)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Teams removed from pool", gin.H{"removed": removed})
}

// --- Session handlers ---

// GetSession godoc
// @Summary Get the live session state
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Success 200 {object} responses.SuccessResponse{data=AuctionSession}
// @Failure 404 {object} responses.ErrorResponse "Session not found"
// @Router /auctions/{auction_id}/session [get]
func (ac *AuctionController) GetSession(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	session, err := ac.engine.GetSession(auctionID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Session retrieved successfully", session)
}

// StartBidding godoc
// @Summary Open bidding for a player
// @Description Puts an available pool player on the block and opens the bidding window.
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param player body StartBiddingRequest true "Player to open bidding for"
// @Success 200 {object} responses.SuccessResponse{data=AuctionSession}
// @Failure 409 {object} responses.ErrorResponse "Auction not live or player already sold"
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/bidding/start [post]
func (ac *AuctionController) StartBidding(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req StartBiddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	session, err := ac.engine.StartBidding(auctionID, req.PlayerID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Bidding opened", session)
}

// NextPlayer godoc
// @Summary Clear the current player
// @Description Resets the on-the-block state after a sale or a skip. Idempotent.
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Success 200 {object} responses.SuccessResponse{data=AuctionSession}
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/bidding/next [post]
func (ac *AuctionController) NextPlayer(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	session, err := ac.engine.NextPlayer(auctionID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Ready for next player", session)
}

// --- Bidding handlers ---

// PlaceBid godoc
// @Summary Record a bid
// @Description Validates the admission rules and appends the bid to the auction's bid history.
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param bid body PlaceBidRequest true "Bid"
// @Success 201 {object} responses.SuccessResponse{data=Bid}
// @Failure 422 {object} responses.ErrorResponse "Bid rejected with the violated rule"
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/bids [post]
func (ac *AuctionController) PlaceBid(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	bid, err := ac.engine.PlaceBid(auctionID, req.PlayerID, req.TeamID, req.Amount)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Bid recorded", bid)
}

// ListBids godoc
// @Summary List bids
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param player_id query uint false "Filter by player"
// @Success 200 {object} responses.SuccessResponse{data=[]Bid}
// @Router /auctions/{auction_id}/bids [get]
func (ac *AuctionController) ListBids(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var playerID *uint
	if raw := c.Query("player_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			responses.SendError(c, http.StatusBadRequest, "Invalid player_id")
			return
		}
		id := uint(parsed)
		playerID = &id
	}
	bids, err := ac.engine.ListBids(auctionID, playerID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Bids retrieved successfully", bids)
}

// FinalizeBid godoc
// @Summary Finalize a bid into a sale
// @Description Marks the bid winning and commits the player to the bidding team.
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param bid_id path uint true "Bid ID"
// @Success 200 {object} responses.SuccessResponse{data=SaleResult}
// @Failure 409 {object} responses.ErrorResponse "Player already sold or roster at capacity"
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/bids/{bid_id}/finalize [post]
func (ac *AuctionController) FinalizeBid(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	bidID, ok := parseIDParam(c, "bid_id")
	if !ok {
		return
	}
	result, err := ac.engine.FinalizeBid(auctionID, bidID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Sale committed", result)
}

// ManualAssign godoc
// @Summary Manually assign a player to a team
// @Description Moderator override: commits a sale at the given price without touching the bid history.
// @Tags Auctions
// @Accept json
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param assignment body ManualAssignRequest true "Assignment"
// @Success 200 {object} responses.SuccessResponse{data=SaleResult}
// @Failure 409 {object} responses.ErrorResponse "Player already sold or roster at capacity"
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/assign [post]
func (ac *AuctionController) ManualAssign(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req ManualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	result, err := ac.engine.ManualAssign(auctionID, req.PlayerID, req.TeamID, req.Price)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Player assigned", result)
}

// AssignIconPlayers godoc
// @Summary Draft icon players as free captains
// @Description Randomly assigns icon-flagged players to teams at price 0. Runs out quietly; returns the number assigned.
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Success 200 {object} responses.SuccessResponse
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/assign-icons [post]
func (ac *AuctionController) AssignIconPlayers(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	assigned, err := ac.engine.AssignIconPlayers(auctionID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Icon players assigned", gin.H{"assigned": assigned})
}

// GetQueue godoc
// @Summary Get the shuffled category queue
// @Description Unassigned pool players of one category in a fresh random order per call.
// @Tags Auctions
// @Produce json
// @Param auction_id path uint true "Auction ID"
// @Param category query string true "Player category"
// @Success 200 {object} responses.SuccessResponse
// @Security ApiKeyAuth
// @Router /auctions/{auction_id}/queue [get]
func (ac *AuctionController) GetQueue(c *gin.Context) {
	auctionID, ok := parseIDParam(c, "auction_id")
	if !ok {
		return
	}
	category := c.Query("category")
	if category == "" {
		responses.SendError(c, http.StatusBadRequest, "category query parameter is required")
		return
	}
	queue, err := ac.engine.CategoryQueue(auctionID, category)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Queue retrieved successfully", queue)
}
