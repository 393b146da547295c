package models

import "time"

// Message represents a direct message between two users.
//
// Unlike the other models, the primary key is a database-assigned sequence
// rather than a UUID: message order within a conversation is the insertion
// order, and the sequence makes that order total even when two appends share
// a creation timestamp.
//
// Sender, receiver and creation timestamp are immutable once persisted; only
// Read and the two hidden flags change afterwards. The hidden flags implement
// per-side conversation deletion: a row stays in storage even when both sides
// have hidden it.
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	SenderID   string    `gorm:"size:36;index" json:"senderId"`
	ReceiverID string    `gorm:"size:36;index" json:"receiverId"`
	Body       string    `gorm:"type:text" json:"body"`
	ImageURL   string    `gorm:"size:255" json:"imageUrl,omitempty"`
	// Plate is the contextual plate the conversation concerns, if any.
	Plate              string `gorm:"size:16;index" json:"plate,omitempty"`
	Read               bool   `gorm:"default:false" json:"read"`
	HiddenFromSender   bool   `gorm:"default:false" json:"-"`
	HiddenFromReceiver bool   `gorm:"default:false" json:"-"`

	// Relations
	Sender   User `gorm:"foreignKey:SenderID" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"-"`
}
