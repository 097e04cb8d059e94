package auth

import (
	"net/http"

	"github.com/ParthVaghani-21/campuslife/config"
	"github.com/ParthVaghani-21/campuslife/internal/middleware"
	"github.com/ParthVaghani-21/campuslife/pkg/responses"
	"github.com/ParthVaghani-21/campuslife/pkg/token"
	"github.com/ParthVaghani-21/campuslife/pkg/utils"
	"github.com/ParthVaghani-21/campuslife/pkg/validator"
	"github.com/gin-gonic/gin"
)

// AuthController handles moderator authentication.
type AuthController struct {
	appConfig *config.Config
}

func NewAuthController(appConfig *config.Config) *AuthController {
	return &AuthController{appConfig: appConfig}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login godoc
// @Summary Moderator login
// @Description Authenticates the auction moderator and issues a JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Moderator credentials"
// @Success 200 {object} responses.SuccessResponse{data=LoginResponse} "Authenticated"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 401 {object} responses.ErrorResponse "Bad credentials"
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}

	if req.Username != ac.appConfig.Admin.Username ||
		!utils.CheckPassword(ac.appConfig.Admin.PasswordHash, req.Password) {
		responses.SendError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	signed, err := token.GenerateJWT(req.Username, middleware.RoleAdmin,
		ac.appConfig.JWT.Secret, ac.appConfig.JWT.ExpiryMinutes)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to issue token: "+err.Error())
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Login successful", LoginResponse{
		Token: signed,
		Role:  middleware.RoleAdmin,
	})
}
