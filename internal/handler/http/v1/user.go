package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/auth"
	"github.com/shenikar/geo_attendance/internal/models"
)

// @Summary Create a student
// @Description Add a student to the roster. Requires API key.
// @Tags Users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user body CreateUserRequest true "Student"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /users [post]
func (h *Handler) createUser(c *gin.Context) {
	var input CreateUserRequest
	log := h.logger.WithField("method", "createUser")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	user := &models.User{Name: input.Name, Email: input.Email}
	if err := h.userService.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToUserResponse(user))
}

// @Summary Get a student
// @Description Get a student by ID. Requires API key.
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse "Invalid user ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *Handler) getUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Error: "invalid user ID"})
		return
	}
	log := h.logger.WithField("method", "getUser").WithField("id", id)

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}

// @Summary Issue a bearer token
// @Description Issue a student access token for the attendance endpoints. Requires API key.
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse "Invalid user ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id}/token [post]
func (h *Handler) issueToken(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Error: "invalid user ID"})
		return
	}
	log := h.logger.WithField("method", "issueToken").WithField("id", id)

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}

	token, err := auth.Issue(user.ID, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.JWTTTL)
	if err != nil {
		log.WithError(err).Error("Failed to sign token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token.AccessToken, TokenType: "Bearer", ExpiresAt: token.ExpiresAt})
}
