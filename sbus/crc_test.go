package sbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16Empty(t *testing.T) {
	assert.Equal(t, uint16(0x0000), CRC16(nil))
	assert.Equal(t, uint16(0x0000), CRC16([]byte{}))
}

func TestCRC16XModemCheckValue(t *testing.T) {
	// The standard CRC-16/XMODEM check value for the ASCII string
	// "123456789".
	assert.Equal(t, uint16(0x31C3), CRC16([]byte("123456789")))
}
