package player

import (
	"net/http"
	"strconv"

	"github.com/ParthVaghani-21/campuslife/pkg/responses"
	"github.com/ParthVaghani-21/campuslife/pkg/validator"
	"github.com/gin-gonic/gin"
)

// PlayerController handles registration-related HTTP requests
type PlayerController struct {
	repo PlayerRepository
}

// NewPlayerController creates a new player controller
func NewPlayerController(repo PlayerRepository) *PlayerController {
	return &PlayerController{repo: repo}
}

type CreateRegistrationRequest struct {
	Name              string `json:"name" binding:"required,min=2,max=100"`
	Email             string `json:"email" binding:"omitempty,email"`
	Category          string `json:"category"`
	IconPlayerRequest bool   `json:"icon_player_request"`
}

// CreateRegistration godoc
// @Summary Register a player for the auction
// @Tags Players
// @Accept json
// @Produce json
// @Param player body CreateRegistrationRequest true "Registration data"
// @Success 201 {object} responses.SuccessResponse{data=Registration}
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Security ApiKeyAuth
// @Router /players [post]
func (pc *PlayerController) CreateRegistration(c *gin.Context) {
	var req CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}

	reg := Registration{
		Name:              req.Name,
		Email:             req.Email,
		Category:          req.Category,
		Status:            StatusAvailable,
		Role:              RolePlayer,
		IconPlayerRequest: req.IconPlayerRequest,
	}
	if err := pc.repo.CreateRegistration(&reg); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create registration: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Registration created successfully", reg)
}

// GetRegistration godoc
// @Summary Get a registration by ID
// @Tags Players
// @Produce json
// @Param player_id path uint true "Registration ID"
// @Success 200 {object} responses.SuccessResponse{data=Registration}
// @Failure 404 {object} responses.ErrorResponse "Registration not found"
// @Router /players/{player_id} [get]
func (pc *PlayerController) GetRegistration(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("player_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid player ID")
		return
	}
	reg, err := pc.repo.GetRegistrationByID(uint(id))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve registration: "+err.Error())
		return
	}
	if reg == nil {
		responses.NotFound(c, "Registration")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Registration retrieved successfully", reg)
}

// GetAllRegistrations godoc
// @Summary List registrations
// @Tags Players
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status (available/sold)"
// @Success 200 {object} responses.PaginatedResponse{data=[]Registration}
// @Router /players [get]
func (pc *PlayerController) GetAllRegistrations(c *gin.Context) {
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

	filters := make(map[string]interface{})
	if category := c.Query("category"); category != "" {
		filters["category"] = category
	}
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}

	regs, total, err := pc.repo.GetAllRegistrations(page, limit, filters)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve registrations: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "", regs, total, page, limit)
}
