package store

import (
	"context"

	"gorm.io/gorm"

	"platechat-server/internal/models"
)

// ConversationStore is the sole write path for message content. It does not
// check block status; that policy lives in the chat service so the storage
// layer stays authorization-free.
type ConversationStore struct {
	DB *gorm.DB
}

// NewConversationStore creates a new ConversationStore.
func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{DB: db}
}

// Append persists a new message. The id and creation timestamp are assigned
// by the store; the auto-incremented id is the authoritative message order,
// so concurrent appends to the same pair never lose a message and never tie.
func (s *ConversationStore) Append(ctx context.Context, msg *models.Message) error {
	return s.DB.WithContext(ctx).Create(msg).Error
}

// History returns all messages between viewer and partner, oldest first,
// excluding rows hidden from the viewer's own side: messages the viewer sent
// that are hidden-from-sender, and messages the viewer received that are
// hidden-from-receiver. The partner's hidden flags are ignored.
//
// scopePlate is an optional exact-match filter on the contextual plate; the
// empty string returns the whole shared log for the pair.
func (s *ConversationStore) History(ctx context.Context, viewerID, partnerID, scopePlate string) ([]models.Message, error) {
	var messages []models.Message
	query := s.DB.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ? AND hidden_from_sender = ?) OR (sender_id = ? AND receiver_id = ? AND hidden_from_receiver = ?)",
			viewerID, partnerID, false, partnerID, viewerID, false).
		Order("id asc")

	if scopePlate != "" {
		query = query.Where("plate = ?", scopePlate)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// VisibleForViewer returns every message involving the viewer that is not
// hidden from the viewer's side, newest first. This is the summary builder's
// input: one pass over it yields last message, timestamp and unread count per
// counterpart.
func (s *ConversationStore) VisibleForViewer(ctx context.Context, viewerID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.WithContext(ctx).
		Where("(sender_id = ? AND hidden_from_sender = ?) OR (receiver_id = ? AND hidden_from_receiver = ?)",
			viewerID, false, viewerID, false).
		Order("id desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flags every unread message from sender to receiver as read.
// Idempotent: already-read rows match nothing.
func (s *ConversationStore) MarkRead(ctx context.Context, receiverID, senderID string) error {
	return s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND `read` = ?", receiverID, senderID, false).
		Update("read", true).Error
}

// HideForSide implements "delete this conversation for me only": it hides
// messages the user sent to partner from the sender side and messages the
// user received from partner from the receiver side. The partner's view is
// untouched. Idempotent; there is no undelete.
func (s *ConversationStore) HideForSide(ctx context.Context, userID, partnerID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ?", userID, partnerID).
			Update("hidden_from_sender", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ?", partnerID, userID).
			Update("hidden_from_receiver", true).Error
	})
}

// UnreadCount counts messages received by the viewer from partner that are
// unread and not hidden from the receiver side.
func (s *ConversationStore) UnreadCount(ctx context.Context, viewerID, partnerID string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND `read` = ? AND hidden_from_receiver = ?",
			viewerID, partnerID, false, false).
		Count(&count).Error
	return count, err
}
