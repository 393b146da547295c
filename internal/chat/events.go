package chat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"platechat-server/internal/models"
)

// Inbound event types accepted on the websocket.
const (
	EventJoin  = "join_chat"
	EventLeave = "leave_chat"
	EventSend  = "send_message"
)

// Outbound frame types emitted to clients.
const (
	FrameReceiveMessage = "receive_message"
	FrameSendRejected   = "send_rejected"
	FrameError          = "error"
)

// Rejection reasons carried on send_rejected frames. "blocked" is terminal
// for the conversation; "invalid" is terminal for the request; "unavailable"
// is transient and the client may retry.
const (
	ReasonBlocked     = "blocked"
	ReasonInvalid     = "invalid"
	ReasonUnavailable = "unavailable"
)

// Frame is an outbound websocket message.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// JoinPayload identifies the channel a session wants to join or leave.
type JoinPayload struct {
	Room string `json:"room"`
}

// SendPayload is a client's request to deliver a message. TempID is an
// opaque client-side token echoed back on delivery and rejection so the
// client can reconcile its optimistically rendered copy.
type SendPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Body       string `json:"body"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Plate      string `json:"plate,omitempty"`
	TempID     string `json:"tempId,omitempty"`
}

// RejectedPayload is sent to the originating session only when a send is
// refused.
type RejectedPayload struct {
	TempID string `json:"tempId,omitempty"`
	Reason string `json:"reason"`
}

// DeliveredMessage is the canonical persisted message plus the echoed TempID.
type DeliveredMessage struct {
	models.Message
	TempID string `json:"tempId,omitempty"`
}

// InboundEvent is the closed set of events a session may produce. Exactly one
// field is non-nil after a successful decode.
type InboundEvent struct {
	Join  *JoinPayload
	Leave *JoinPayload
	Send  *SendPayload
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DecodeEvent parses a raw websocket text message into an InboundEvent.
// Unknown event types are an error so the dispatch stays exhaustive.
func DecodeEvent(raw []byte) (*InboundEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}

	switch env.Type {
	case EventJoin:
		var p JoinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", EventJoin, err)
		}
		return &InboundEvent{Join: &p}, nil
	case EventLeave:
		var p JoinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", EventLeave, err)
		}
		return &InboundEvent{Leave: &p}, nil
	case EventSend:
		var p SendPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", EventSend, err)
		}
		return &InboundEvent{Send: &p}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// ChannelKey derives the shared room key for a user pair: the two ids sorted
// lexicographically and joined with an underscore. User ids are UUIDs and
// never contain the separator, so the key is injective.
func ChannelKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// channelMembers splits a channel key back into the two participant ids.
func channelMembers(key string) (string, string, bool) {
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
