package handlers

import (
	"errors"

	"platechat-server/internal/store"
	"platechat-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler handles user lookup requests: plate search and public profiles.
type UserHandler struct {
	Registry *store.Registry
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(registry *store.Registry) *UserHandler {
	return &UserHandler{Registry: registry}
}

// SearchByPlate finds the registered owner of a plate. Only the owner's id,
// plate and registration date are exposed.
func (h *UserHandler) SearchByPlate(c *gin.Context) {
	plate := utils.NormalizePlate(c.Query("plate"))
	if plate == "" {
		utils.BadRequest(c, "Plate query parameter is required")
		return
	}

	profile, err := h.Registry.FindUserByPlate(c.Request.Context(), plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "No user registered with this plate")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "User found", profile)
}

// GetUserByID returns a user's public profile: their id and primary plate.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")
	ctx := c.Request.Context()

	exists, err := h.Registry.UserExists(ctx, userID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if !exists {
		utils.NotFound(c, "User not found")
		return
	}

	plate, err := h.Registry.PrimaryPlate(ctx, userID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.Success(c, "User found", gin.H{
		"id":    userID,
		"plate": plate,
	})
}
