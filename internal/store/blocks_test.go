package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	s := NewBlockStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	require.NoError(t, s.Block(ctx, a.ID, b.ID))
	require.NoError(t, s.Block(ctx, a.ID, b.ID))

	blocked, err := s.ListBlockedBy(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, blocked)
}

func TestIsBlockedIsSymmetricInEffect(t *testing.T) {
	db := newTestDB(t)
	s := NewBlockStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	// The edge is directional in storage
	require.NoError(t, s.Block(ctx, a.ID, b.ID))

	// But blocks messaging in both directions
	blocked, err := s.IsBlocked(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = s.IsBlocked(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestUnblockAbsentEdgeIsNoOp(t *testing.T) {
	db := newTestDB(t)
	s := NewBlockStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	require.NoError(t, s.Unblock(ctx, a.ID, b.ID))

	require.NoError(t, s.Block(ctx, a.ID, b.ID))
	require.NoError(t, s.Unblock(ctx, a.ID, b.ID))

	blocked, err := s.IsBlocked(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestUnblockOnlyRemovesOwnEdge(t *testing.T) {
	db := newTestDB(t)
	s := NewBlockStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	require.NoError(t, s.Block(ctx, a.ID, b.ID))
	require.NoError(t, s.Block(ctx, b.ID, a.ID))

	// A unblocking B leaves B's own edge in place
	require.NoError(t, s.Unblock(ctx, a.ID, b.ID))

	blocked, err := s.IsBlocked(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, blocked)
}
