package team

import (
	"net/http"
	"strconv"

	"github.com/ParthVaghani-21/campuslife/pkg/responses"
	"github.com/ParthVaghani-21/campuslife/pkg/validator"
	"github.com/gin-gonic/gin"
)

// TeamController handles team-related HTTP requests
type TeamController struct {
	repo TeamRepository
}

// NewTeamController creates a new team controller
func NewTeamController(repo TeamRepository) *TeamController {
	return &TeamController{repo: repo}
}

type CreateTeamRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	OwnerName   string  `json:"owner_name" binding:"required"`
	Logo        string  `json:"logo"`
	TotalPoints float64 `json:"total_points" binding:"required,gt=0"`
	MaxPlayers  int     `json:"max_players" binding:"gte=0"`
}

// CreateTeam godoc
// @Summary Create an auction team
// @Tags Teams
// @Accept json
// @Produce json
// @Param team body CreateTeamRequest true "Team data"
// @Success 201 {object} responses.SuccessResponse{data=Team}
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 409 {object} responses.ErrorResponse "Team name already exists"
// @Security ApiKeyAuth
// @Router /teams [post]
func (tc *TeamController) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}

	existing, _ := tc.repo.GetTeamByName(req.Name)
	if existing != nil {
		responses.SendError(c, http.StatusConflict, "Team name already exists")
		return
	}

	team := Team{
		Name:        req.Name,
		OwnerName:   req.OwnerName,
		Logo:        req.Logo,
		TotalPoints: req.TotalPoints,
		PointsSpent: 0,
		PointsLeft:  req.TotalPoints,
		MaxPlayers:  req.MaxPlayers,
		Roster:      PurchaseRecords{},
	}
	if err := tc.repo.CreateTeam(&team); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create team: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team created successfully", team)
}

// GetTeamByID godoc
// @Summary Get a team by ID
// @Tags Teams
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=Team}
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id} [get]
func (tc *TeamController) GetTeamByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}
	team, err := tc.repo.GetTeamByID(uint(id))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team: "+err.Error())
		return
	}
	if team == nil {
		responses.NotFound(c, "Team")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", team)
}

// GetAllTeams godoc
// @Summary List teams
// @Tags Teams
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]Team}
// @Router /teams [get]
func (tc *TeamController) GetAllTeams(c *gin.Context) {
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

	teams, total, err := tc.repo.GetAllTeams(page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve teams: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "", teams, total, page, limit)
}
