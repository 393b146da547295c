package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"join_chat","data":{"room":"a_b"}}`))
	require.NoError(t, err)
	require.NotNil(t, ev.Join)
	assert.Equal(t, "a_b", ev.Join.Room)
	assert.Nil(t, ev.Send)

	ev, err = DecodeEvent([]byte(`{"type":"send_message","data":{"receiverId":"u2","body":"hi","tempId":"t1"}}`))
	require.NoError(t, err)
	require.NotNil(t, ev.Send)
	assert.Equal(t, "u2", ev.Send.ReceiverID)
	assert.Equal(t, "t1", ev.Send.TempID)
}

func TestDecodeEventRejectsUnknownType(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"type":"typing","data":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestDecodeEventRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"type":`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"type":"send_message","data":"not an object"}`))
	assert.Error(t, err)
}

func TestChannelMembers(t *testing.T) {
	a, b, ok := channelMembers("alpha_beta")
	require.True(t, ok)
	assert.Equal(t, "alpha", a)
	assert.Equal(t, "beta", b)

	_, _, ok = channelMembers("no-separator")
	assert.False(t, ok)

	_, _, ok = channelMembers("_missing")
	assert.False(t, ok)
}
