package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"platechat-server/internal/models"
)

// BlockStore is the durable record of block edges between users. It is the
// single authorization gate consulted before any send.
type BlockStore struct {
	DB *gorm.DB
}

// NewBlockStore creates a new BlockStore.
func NewBlockStore(db *gorm.DB) *BlockStore {
	return &BlockStore{DB: db}
}

// IsBlocked reports whether messaging between a and b is forbidden in either
// direction: an edge a->b or b->a is enough. Blocks are directional in
// storage but symmetric in effect.
func (s *BlockStore) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Block creates the blocker->blocked edge. Creating an edge that already
// exists is a no-op, not an error.
func (s *BlockStore) Block(ctx context.Context, blockerID, blockedID string) error {
	block := models.Block{BlockerID: blockerID, BlockedID: blockedID}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&block).Error
}

// Unblock removes the blocker->blocked edge. Removing an absent edge is a
// no-op, not an error.
func (s *BlockStore) Unblock(ctx context.Context, blockerID, blockedID string) error {
	return s.DB.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

// ListBlockedBy returns the ids of all users the given user has blocked.
func (s *BlockStore) ListBlockedBy(ctx context.Context, userID string) ([]string, error) {
	var blocked []string
	err := s.DB.WithContext(ctx).Model(&models.Block{}).
		Where("blocker_id = ?", userID).
		Order("created_at asc").
		Pluck("blocked_id", &blocked).Error
	if err != nil {
		return nil, err
	}
	return blocked, nil
}
