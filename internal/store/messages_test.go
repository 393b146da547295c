package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platechat-server/internal/models"
)

func appendMessage(t *testing.T, s *ConversationStore, sender, receiver, body, plate string) *models.Message {
	t.Helper()
	msg := models.Message{
		SenderID:   sender,
		ReceiverID: receiver,
		Body:       body,
		Plate:      plate,
	}
	require.NoError(t, s.Append(context.Background(), &msg))
	require.NotEmpty(t, msg.ID)
	return &msg
}

func TestHistoryOrdersOldestFirst(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	appendMessage(t, s, a.ID, b.ID, "first", "")
	appendMessage(t, s, b.ID, a.ID, "second", "")
	appendMessage(t, s, a.ID, b.ID, "third", "")

	history, err := s.History(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Body)
	assert.Equal(t, "second", history[1].Body)
	assert.Equal(t, "third", history[2].Body)

	// Both sides see the same shared log
	partnerHistory, err := s.History(ctx, b.ID, a.ID, "")
	require.NoError(t, err)
	require.Len(t, partnerHistory, 3)
}

func TestHistoryBreaksTimestampTiesByAppendOrder(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	// Two appends landing in the same timestamp quantum still come back in
	// append order; the sequence breaks the tie
	at := time.Now().Truncate(time.Second)
	first := models.Message{SenderID: a.ID, ReceiverID: b.ID, Body: "first", CreatedAt: at}
	require.NoError(t, s.Append(ctx, &first))
	second := models.Message{SenderID: a.ID, ReceiverID: b.ID, Body: "second", CreatedAt: at}
	require.NoError(t, s.Append(ctx, &second))

	assert.Greater(t, second.ID, first.ID)

	history, err := s.History(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Body)
	assert.Equal(t, "second", history[1].Body)
}

func TestHistoryEmptyForStrangers(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationStore(db)

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	history, err := s.History(context.Background(), a.ID, b.ID, "")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryScopePlateFilter(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	appendMessage(t, s, a.ID, b.ID, "about my car", "AA-123-BB")
	appendMessage(t, s, b.ID, a.ID, "no context", "")

	all, err := s.History(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := s.History(ctx, a.ID, b.ID, "AA-123-BB")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "about my car", scoped[0].Body)
}

func TestHideForSideIsAsymmetric(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")
	c := createUser(t, db, "c@example.com", "CC-456-DD")

	appendMessage(t, s, a.ID, b.ID, "hello", "")
	appendMessage(t, s, b.ID, a.ID, "hi", "")
	appendMessage(t, s, a.ID, c.ID, "other pair", "")

	require.NoError(t, s.HideForSide(ctx, a.ID, b.ID))

	// A's view of the conversation is gone
	aHistory, err := s.History(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	assert.Empty(t, aHistory)

	// B's view is unaffected
	bHistory, err := s.History(ctx, b.ID, a.ID, "")
	require.NoError(t, err)
	assert.Len(t, bHistory, 2)

	// Other pairs are unaffected
	cHistory, err := s.History(ctx, a.ID, c.ID, "")
	require.NoError(t, err)
	assert.Len(t, cHistory, 1)

	// Hiding again is a no-op
	require.NoError(t, s.HideForSide(ctx, a.ID, b.ID))
}

func TestHideForSideDoesNotAffectNewMessages(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	appendMessage(t, s, a.ID, b.ID, "old", "")
	require.NoError(t, s.HideForSide(ctx, a.ID, b.ID))

	appendMessage(t, s, b.ID, a.ID, "new", "")

	aHistory, err := s.History(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	require.Len(t, aHistory, 1)
	assert.Equal(t, "new", aHistory[0].Body)
}

func TestMarkReadZeroesExactlyOnePair(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")
	c := createUser(t, db, "c@example.com", "CC-456-DD")

	appendMessage(t, s, b.ID, a.ID, "one", "")
	appendMessage(t, s, b.ID, a.ID, "two", "")
	appendMessage(t, s, c.ID, a.ID, "three", "")

	count, err := s.UnreadCount(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, s.MarkRead(ctx, a.ID, b.ID))

	count, err = s.UnreadCount(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// The other pair keeps its unread message
	count, err = s.UnreadCount(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Idempotent
	require.NoError(t, s.MarkRead(ctx, a.ID, b.ID))
}

func TestUnreadCountIgnoresHiddenMessages(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationStore(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	appendMessage(t, s, b.ID, a.ID, "unread", "")
	require.NoError(t, s.HideForSide(ctx, a.ID, b.ID))

	count, err := s.UnreadCount(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestVisibleForViewerNewestFirst(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationStore(db)

	a := createUser(t, db, "a@example.com", "AA-123-BB")
	b := createUser(t, db, "b@example.com", "ZZ-999-YY")

	appendMessage(t, s, a.ID, b.ID, "oldest", "")
	appendMessage(t, s, b.ID, a.ID, "newest", "")

	msgs, err := s.VisibleForViewer(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "newest", msgs[0].Body)
	assert.Equal(t, "oldest", msgs[1].Body)
}
