package sbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramAttributeStringAndUnknown(t *testing.T) {
	assert.Equal(t, "Request", AttributeRequest.String())
	assert.Equal(t, "Response", AttributeResponse.String())
	assert.Equal(t, "Acknowledge", AttributeAcknowledge.String())
	assert.Equal(t, "Unknown(7)", TelegramAttribute(7).String())
}

func TestCommandIdKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "ReadFirmwareVersion", CommandReadFirmwareVersion.String())
	assert.Equal(t, "WriteTimers", CommandWriteTimers.String())
	assert.Equal(t, "Unknown(255)", CommandId(0xFF).String())
}

func TestAcknowledgeRoundTripAndIsAck(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, AckNak.Encode(e))
	got, err := DecodeAcknowledge(NewDecoder(e.Finish()))
	require.NoError(t, err)
	assert.Equal(t, AckNak, got)
	assert.False(t, got.IsAck())
	assert.True(t, AckOk.IsAck())
	assert.Equal(t, "NakPassword", AckNakPassword.String())
	assert.Equal(t, "Unknown(99)", Acknowledge(99).String())
}
