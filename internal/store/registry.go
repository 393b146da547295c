package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"platechat-server/internal/models"
)

// Registry resolves users and their registered plates. The chat service and
// summary builder only consume this read-side contract; account and vehicle
// mutation goes through the HTTP handlers.
type Registry struct {
	DB *gorm.DB
}

// NewRegistry creates a new Registry.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{DB: db}
}

// UserExists reports whether a user with the given id is registered.
func (r *Registry) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PrimaryPlate returns the user's primary plate, falling back to the oldest
// registered plate when none is flagged primary. Returns the empty string for
// a user with no vehicles.
func (r *Registry) PrimaryPlate(ctx context.Context, userID string) (string, error) {
	var vehicle models.Vehicle
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary desc, created_at asc").
		First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return vehicle.Plate, nil
}

// ListPlates returns all plates registered by the user, primary first.
func (r *Registry) ListPlates(ctx context.Context, userID string) ([]string, error) {
	var plates []string
	err := r.DB.WithContext(ctx).Model(&models.Vehicle{}).
		Where("user_id = ?", userID).
		Order("is_primary desc, created_at asc").
		Pluck("plate", &plates).Error
	if err != nil {
		return nil, err
	}
	return plates, nil
}

// FindUserByPlate resolves a plate to its owner's public profile.
// Returns gorm.ErrRecordNotFound when the plate is not registered.
func (r *Registry) FindUserByPlate(ctx context.Context, plate string) (*models.UserProfile, error) {
	var vehicle models.Vehicle
	if err := r.DB.WithContext(ctx).Where("plate = ?", plate).First(&vehicle).Error; err != nil {
		return nil, err
	}

	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", vehicle.UserID).Error; err != nil {
		return nil, err
	}

	return &models.UserProfile{
		ID:        user.ID,
		Plate:     vehicle.Plate,
		CreatedAt: user.CreatedAt,
	}, nil
}

// PushToken returns the stored push token for a user, empty when the user
// has not registered one.
func (r *Registry) PushToken(ctx context.Context, userID string) (string, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Select("push_token").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.PushToken, nil
}
