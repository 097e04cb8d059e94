package event

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ParthVaghani-21/campuslife/pkg/responses"
	"github.com/ParthVaghani-21/campuslife/pkg/validator"
	"github.com/gin-gonic/gin"
)

// EventController handles event lookups for the auction service.
type EventController struct {
	repo EventRepository
}

func NewEventController(repo EventRepository) *EventController {
	return &EventController{repo: repo}
}

type CreateEventRequest struct {
	Title    string    `json:"title" binding:"required,min=2,max=200"`
	Venue    string    `json:"venue"`
	StartsAt time.Time `json:"starts_at"`
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} responses.SuccessResponse{data=Event}
// @Security ApiKeyAuth
// @Router /events [post]
func (ec *EventController) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}
	event := Event{Title: req.Title, Venue: req.Venue, StartsAt: req.StartsAt}
	if err := ec.repo.CreateEvent(&event); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create event: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Event created successfully", event)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags Events
// @Produce json
// @Param event_id path uint true "Event ID"
// @Success 200 {object} responses.SuccessResponse{data=Event}
// @Failure 404 {object} responses.ErrorResponse "Event not found"
// @Router /events/{event_id} [get]
func (ec *EventController) GetEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("event_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid event ID")
		return
	}
	event, err := ec.repo.GetEventByID(uint(id))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve event: "+err.Error())
		return
	}
	if event == nil {
		responses.NotFound(c, "Event")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Event retrieved successfully", event)
}

// GetAllEvents godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]Event}
// @Router /events [get]
func (ec *EventController) GetAllEvents(c *gin.Context) {
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

	events, total, err := ec.repo.GetAllEvents(page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve events: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "", events, total, page, limit)
}
