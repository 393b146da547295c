package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents a registered vehicle owner
type User struct {
	BaseModel
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	PushToken string `gorm:"size:255" json:"-"`          // Expo push token, set by the mobile client

	// Relations (not always preloaded)
	Vehicles         []Vehicle      `gorm:"foreignKey:UserID" json:"vehicles,omitempty"`
	RefreshTokens    []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	SentMessages     []Message      `gorm:"foreignKey:SenderID" json:"-"`
	ReceivedMessages []Message      `gorm:"foreignKey:ReceiverID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Plate     string    `json:"plate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserProfile is the public view of a user, as returned by plate search.
// Only the identifier and primary plate are exposed to other users.
type UserProfile struct {
	ID        string    `json:"id"`
	Plate     string    `json:"plate"`
	CreatedAt time.Time `json:"createdAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	s := UserSanitized{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	for _, v := range u.Vehicles {
		if v.IsPrimary {
			s.Plate = v.Plate
			break
		}
	}
	return s
}
