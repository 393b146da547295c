package models

// Block represents a directed "blocker refuses contact from blocked" edge.
// The composite unique index guarantees at most one edge per ordered pair;
// duplicate creates are treated as no-ops by the store.
type Block struct {
	BaseModel
	BlockerID string `gorm:"size:36;not null;uniqueIndex:idx_blocker_blocked" json:"blockerId"`
	BlockedID string `gorm:"size:36;not null;uniqueIndex:idx_blocker_blocked;index" json:"blockedId"`

	// Relations
	Blocker User `gorm:"foreignKey:BlockerID" json:"-"`
	Blocked User `gorm:"foreignKey:BlockedID" json:"-"`
}
