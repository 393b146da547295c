package chat

import (
	"context"
	"time"

	"platechat-server/internal/store"
)

// Summary is one row of a user's conversation list: the counterpart, the
// viewer-side plate scope the conversation is filed under, the title to
// display, the latest message and the unread count.
type Summary struct {
	PartnerID    string    `json:"partnerId"`
	Scope        string    `json:"scope,omitempty"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"lastMessage"`
	LastImageURL string    `json:"lastImageUrl,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	UnreadCount  int64     `json:"unreadCount"`
}

// SummaryBuilder aggregates the message log into one summary row per
// counterpart. Conversations are derived, never stored: each request computes
// them fresh so the rows always honor the viewer's soft-delete state.
type SummaryBuilder struct {
	messages *store.ConversationStore
	registry *store.Registry
}

// NewSummaryBuilder creates a SummaryBuilder.
func NewSummaryBuilder(messages *store.ConversationStore, registry *store.Registry) *SummaryBuilder {
	return &SummaryBuilder{messages: messages, registry: registry}
}

// Conversations builds the viewer's chat list. One pass over the viewer's
// visible messages, newest first: the first message seen for a counterpart
// fixes the row's last message, timestamp, scope and title; every further
// message only accumulates the unread count. Rows come out in most-recent-
// activity order.
//
// Scope resolution: when a message's contextual plate is one of the viewer's
// own, the conversation is filed under that plate and titled with the
// counterpart's primary plate. Otherwise it is filed under the viewer's
// primary plate and titled with the contextual plate, so one physical
// conversation lands under whichever vehicle of the viewer it concerns.
func (b *SummaryBuilder) Conversations(ctx context.Context, viewerID string) ([]Summary, error) {
	msgs, err := b.messages.VisibleForViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return []Summary{}, nil
	}

	viewerPlates, err := b.registry.ListPlates(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	ownPlate := make(map[string]bool, len(viewerPlates))
	for _, p := range viewerPlates {
		ownPlate[p] = true
	}
	var viewerPrimary string
	if len(viewerPlates) > 0 {
		viewerPrimary = viewerPlates[0]
	}

	rows := make(map[string]*Summary)
	order := make([]string, 0)
	partnerPrimary := make(map[string]string)

	for _, msg := range msgs {
		partnerID := msg.SenderID
		if partnerID == viewerID {
			partnerID = msg.ReceiverID
		}

		row, seen := rows[partnerID]
		if !seen {
			primary, ok := partnerPrimary[partnerID]
			if !ok {
				primary, err = b.registry.PrimaryPlate(ctx, partnerID)
				if err != nil {
					return nil, err
				}
				partnerPrimary[partnerID] = primary
			}

			scope, title := viewerPrimary, primary
			if msg.Plate != "" {
				if ownPlate[msg.Plate] {
					scope = msg.Plate
				} else {
					title = msg.Plate
				}
			}

			row = &Summary{
				PartnerID:    partnerID,
				Scope:        scope,
				Title:        title,
				LastMessage:  msg.Body,
				LastImageURL: msg.ImageURL,
				Timestamp:    msg.CreatedAt,
			}
			rows[partnerID] = row
			order = append(order, partnerID)
		}

		if msg.ReceiverID == viewerID && !msg.Read {
			row.UnreadCount++
		}
	}

	summaries := make([]Summary, 0, len(order))
	for _, partnerID := range order {
		summaries = append(summaries, *rows[partnerID])
	}
	return summaries, nil
}
