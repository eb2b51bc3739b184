package sbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderPrimitivesRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteU8(0x12)
	e.WriteU16(0x3456)
	e.WriteU32(0x789ABCDE)
	e.WriteI32(-1)
	e.WriteBytes([]byte{0xAA, 0xBB})
	e.WriteString("hi")

	d := NewDecoder(e.Finish())

	u8, err := d.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x12), u8)

	u16, err := d.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x3456), u16)

	u32, err := d.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x789ABCDE), u32)

	i32, err := d.ReadI32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i32)

	raw, err := d.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, raw)

	s, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	assert.Equal(t, 0, d.Remaining())
}

func TestDecoderShortReadFails(t *testing.T) {
	d := NewDecoder([]byte{0x01})
	_, err := d.ReadU16()
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestDecoderMissingNULFails(t *testing.T) {
	d := NewDecoder([]byte{'h', 'i'})
	_, err := d.ReadString()
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestLossyUTF8ReplacesInvalidBytes(t *testing.T) {
	e := NewEncoder()
	e.WriteBytes([]byte{'o', 'k', 0xFF, 0xFE})
	e.WriteU8(0)
	d := NewDecoder(e.Finish())
	s, err := d.ReadString()
	require.NoError(t, err)
	assert.Contains(t, s, "ok")
	assert.Contains(t, s, "�")
}

func TestPackedBoolsRoundTrip(t *testing.T) {
	cases := [][]bool{
		{},
		{true},
		{false},
		{true, false, true, true, false, false, false, false, true},
		{true, true, true, true, true, true, true, true, true, true, true, true, true, true, true, true, true},
	}
	for _, bs := range cases {
		e := NewEncoder()
		e.WriteBools(bs)
		encoded := e.Finish()
		assert.Equal(t, (len(bs)+7)/8, len(encoded))

		d := NewDecoder(encoded)
		got, err := d.ReadBools(len(bs))
		require.NoError(t, err)
		assert.Equal(t, bs, got)
	}
}

func TestPackedBoolsScenario(t *testing.T) {
	e := NewEncoder()
	e.WriteBools([]bool{true, false, true, true, false, false, false, false, true})
	assert.Equal(t, []byte{0x0D, 0x01}, e.Finish())
}

func TestPackedBoolsDiscardsSurplusBits(t *testing.T) {
	d := NewDecoder([]byte{0xFF})
	got, err := d.ReadBools(3)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, got)
}
