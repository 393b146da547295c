package models

// Vehicle represents a registered license plate belonging to a user.
// Exactly one vehicle per user should have IsPrimary set; the primary plate
// is the one shown as the user's identity in search results and chat titles.
type Vehicle struct {
	BaseModel
	UserID    string `gorm:"size:36;index;not null" json:"userId"`
	Plate     string `gorm:"uniqueIndex;size:16;not null" json:"plate"`
	IsPrimary bool   `gorm:"default:false" json:"isPrimary"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
