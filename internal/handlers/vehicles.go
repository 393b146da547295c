package handlers

import (
	"platechat-server/internal/middleware"
	"platechat-server/internal/models"
	"platechat-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VehicleHandler handles vehicle (plate) registration for the current user.
type VehicleHandler struct {
	DB *gorm.DB
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(db *gorm.DB) *VehicleHandler {
	return &VehicleHandler{DB: db}
}

// RegisterVehicleRequest represents the request body for adding a vehicle.
type RegisterVehicleRequest struct {
	Plate     string `json:"plate" binding:"required"`
	IsPrimary bool   `json:"isPrimary"`
}

// RegisterVehicle adds a plate to the current user's vehicles. The first
// vehicle a user registers always becomes primary.
func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req RegisterVehicleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	plate := utils.NormalizePlate(req.Plate)
	if !utils.IsValidPlate(plate) {
		utils.BadRequest(c, "Invalid plate format")
		return
	}

	var existing models.Vehicle
	if err := h.DB.Where("plate = ?", plate).First(&existing).Error; err == nil {
		utils.Conflict(c, "This plate is already registered")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	var count int64
	if err := h.DB.Model(&models.Vehicle{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	vehicle := models.Vehicle{
		UserID:    userID,
		Plate:     plate,
		IsPrimary: req.IsPrimary || count == 0,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if vehicle.IsPrimary {
			if err := tx.Model(&models.Vehicle{}).Where("user_id = ?", userID).Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&vehicle).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to register vehicle: "+err.Error())
		return
	}

	utils.Created(c, "Vehicle registered successfully", vehicle)
}

// ListVehicles returns the current user's vehicles, primary first.
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var vehicles []models.Vehicle
	if err := h.DB.Where("user_id = ?", userID).Order("is_primary desc, created_at asc").Find(&vehicles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch vehicles: "+err.Error())
		return
	}

	utils.Success(c, "Vehicles fetched successfully", vehicles)
}

// SetPrimaryVehicle marks one of the current user's vehicles as primary.
func (h *VehicleHandler) SetPrimaryVehicle(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	vehicleID := c.Param("id")

	var vehicle models.Vehicle
	if err := h.DB.First(&vehicle, "id = ?", vehicleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Vehicle not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	// Only the owner can change their primary vehicle
	if vehicle.UserID != userID {
		utils.Forbidden(c, "You do not own this vehicle.")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Vehicle{}).Where("user_id = ?", userID).Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&vehicle).Update("is_primary", true).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update primary vehicle: "+err.Error())
		return
	}

	utils.Success(c, "Primary vehicle updated", vehicle)
}

// DeleteVehicle removes one of the current user's vehicles. When the primary
// vehicle is removed, the oldest remaining vehicle is promoted.
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	vehicleID := c.Param("id")

	var vehicle models.Vehicle
	if err := h.DB.First(&vehicle, "id = ?", vehicleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Vehicle not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if vehicle.UserID != userID {
		utils.Forbidden(c, "You do not own this vehicle.")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&vehicle).Error; err != nil {
			return err
		}
		if !vehicle.IsPrimary {
			return nil
		}
		var next models.Vehicle
		err := tx.Where("user_id = ?", userID).Order("created_at asc").First(&next).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete vehicle: "+err.Error())
		return
	}

	utils.Success(c, "Vehicle deleted successfully", nil)
}
