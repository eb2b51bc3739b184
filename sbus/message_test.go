package sbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMessageFirmwareVersionRequestScenario builds the wire bytes for a
// ReadFirmwareVersionRequest for station 0, sequence 0. total_length is
// the full datagram length including the trailing CRC
// (request_body_len + 11); see DESIGN.md.
func TestMessageFirmwareVersionRequestScenario(t *testing.T) {
	reqBody := []byte{0x00, 0x20} // station 0, ReadFirmwareVersion opcode

	got, err := EncodeMessage(Message{
		SequenceNumber:    0,
		TelegramAttribute: AttributeRequest,
		Body:              reqBody,
	})
	require.NoError(t, err)

	want := []byte{0x00, 0x00, 0x00, 0x0D, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x20, 0xCA, 0x67}
	assert.Equal(t, want, got)

	decoded, err := DecodeMessage(got)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), decoded.SequenceNumber)
	assert.Equal(t, AttributeRequest, decoded.TelegramAttribute)
	assert.Equal(t, reqBody, decoded.Body)
}

func TestMessageRoundTripVariousBodies(t *testing.T) {
	cases := []struct {
		seq  uint16
		attr TelegramAttribute
		body []byte
	}{
		{0, AttributeRequest, nil},
		{1, AttributeResponse, []byte{0x01, 0x02, 0x03}},
		{65535, AttributeAcknowledge, []byte{0x00, 0x00}},
	}
	for _, c := range cases {
		encoded, err := EncodeMessage(Message{SequenceNumber: c.seq, TelegramAttribute: c.attr, Body: c.body})
		require.NoError(t, err)
		decoded, err := DecodeMessage(encoded)
		require.NoError(t, err)
		assert.Equal(t, c.seq, decoded.SequenceNumber)
		assert.Equal(t, c.attr, decoded.TelegramAttribute)
		assert.Equal(t, c.body, decoded.Body)
	}
}

func TestMessageDecodeTamperedCRCFails(t *testing.T) {
	encoded, err := EncodeMessage(Message{SequenceNumber: 0, TelegramAttribute: AttributeRequest, Body: []byte{0x00, 0x20}})
	require.NoError(t, err)

	tampered := append([]byte(nil), encoded...)
	tampered[len(tampered)-1] ^= 0xFF

	_, err = DecodeMessage(tampered)
	var invalid *InvalidDataError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Checksum mismatch", invalid.Reason)
}

func TestMessageDecodeShortLengthFails(t *testing.T) {
	_, err := DecodeMessage([]byte{0x00, 0x00, 0x00, 0x05})
	var invalid *InvalidDataError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Invalid byte length", invalid.Reason)
}
