package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"platechat-server/internal/models"
	"platechat-server/internal/notify"
	"platechat-server/internal/store"
)

const previewMaxRunes = 120

// imagePreview is the preview text shown for image-only messages.
const imagePreview = "\U0001F4F7 Photo"

// Service is the per-connection conversation logic: it authorizes sends
// against the block store, persists accepted messages, fans them out through
// the hub and falls back to push notification for offline receivers.
//
// All dependencies are injected; the service holds no ambient state.
type Service struct {
	messages *store.ConversationStore
	blocks   *store.BlockStore
	registry *store.Registry
	hub      *Hub
	notifier notify.Dispatcher
}

// NewService creates a chat Service.
func NewService(messages *store.ConversationStore, blocks *store.BlockStore, registry *store.Registry, hub *Hub, notifier notify.Dispatcher) *Service {
	return &Service{
		messages: messages,
		blocks:   blocks,
		registry: registry,
		hub:      hub,
		notifier: notifier,
	}
}

// HandleJoin joins the session to a channel after checking the session's user
// is one of the channel's two participants. A session may not eavesdrop on
// other pairs' channels.
func (s *Service) HandleJoin(c *Client, room string) {
	a, b, ok := channelMembers(room)
	if !ok || (c.userID != a && c.userID != b) {
		c.enqueue(Frame{Type: FrameError, Data: RejectedPayload{Reason: ReasonInvalid}})
		return
	}
	s.hub.Join(c, room)
	log.Debug().Str("channel", room).Str("user", c.userID).Msg("session joined channel")
}

// HandleSend processes one send request:
//
//  1. validate the payload (no store access on malformed input)
//  2. reject when either side has blocked the other
//  3. append to the conversation store (the only serialization point)
//  4. fan out to every session joined to the pair's channel
//  5. push-notify the receiver when no session of theirs is joined
//
// Rejections and transient failures are reported to the originating session
// only, carrying the client's TempID so it can mark the optimistic copy.
func (s *Service) HandleSend(ctx context.Context, c *Client, p SendPayload) {
	if !s.validateSend(c, p) {
		c.enqueue(Frame{Type: FrameSendRejected, Data: RejectedPayload{TempID: p.TempID, Reason: ReasonInvalid}})
		return
	}

	blocked, err := s.blocks.IsBlocked(ctx, c.userID, p.ReceiverID)
	if err != nil {
		log.Error().Err(err).Msg("block check failed")
		c.enqueue(Frame{Type: FrameSendRejected, Data: RejectedPayload{TempID: p.TempID, Reason: ReasonUnavailable}})
		return
	}
	if blocked {
		c.enqueue(Frame{Type: FrameSendRejected, Data: RejectedPayload{TempID: p.TempID, Reason: ReasonBlocked}})
		return
	}

	msg := models.Message{
		SenderID:   c.userID,
		ReceiverID: p.ReceiverID,
		Body:       p.Body,
		ImageURL:   p.ImageURL,
		Plate:      strings.ToUpper(strings.TrimSpace(p.Plate)),
	}
	if err := s.messages.Append(ctx, &msg); err != nil {
		log.Error().Err(err).Msg("failed to persist message")
		c.enqueue(Frame{Type: FrameSendRejected, Data: RejectedPayload{TempID: p.TempID, Reason: ReasonUnavailable}})
		return
	}

	// Fan-out happens only after the message is durable.
	key := ChannelKey(msg.SenderID, msg.ReceiverID)
	s.hub.Publish(key, Frame{
		Type: FrameReceiveMessage,
		Data: DeliveredMessage{Message: msg, TempID: p.TempID},
	})

	if !s.hub.UserJoined(key, msg.ReceiverID) {
		// Fire-and-forget: a push failure never fails the send.
		go s.notifier.Notify(context.WithoutCancel(ctx), msg.ReceiverID, Preview(msg), map[string]string{
			"senderId": msg.SenderID,
			"room":     key,
		})
	}

	log.Debug().
		Uint64("message_id", msg.ID).
		Str("channel", key).
		Msg("message delivered")
}

// validateSend checks a send payload before any store access. The sender must
// be the session's authenticated user and the message needs a body or an
// image reference.
func (s *Service) validateSend(c *Client, p SendPayload) bool {
	if p.SenderID != "" && p.SenderID != c.userID {
		return false
	}
	if p.ReceiverID == "" || p.ReceiverID == c.userID {
		return false
	}
	if strings.TrimSpace(p.Body) == "" && p.ImageURL == "" {
		return false
	}
	return true
}

// Preview derives the push-notification preview for a message: the body
// truncated to a display-friendly length, or a photo placeholder for
// image-only messages.
func Preview(msg models.Message) string {
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		return imagePreview
	}
	if utf8.RuneCountInString(body) <= previewMaxRunes {
		return body
	}
	runes := []rune(body)
	return string(runes[:previewMaxRunes]) + "…"
}
