package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/deptsched/timetable-api/internal/dto"
	"github.com/deptsched/timetable-api/internal/service"
	appErrors "github.com/deptsched/timetable-api/pkg/errors"
	"github.com/deptsched/timetable-api/pkg/response"
)

// AuthHandler exposes operator login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login authenticates an operator and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed login payload"))
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, token, nil)
}
