// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbus

import "strconv"

// Acknowledge is the 16-bit result code carried on an Acknowledge
// telegram, the reply to every write command.
type Acknowledge uint16

const (
	AckOk                     Acknowledge = 0
	AckNak                    Acknowledge = 1
	AckNakPassword            Acknowledge = 2
	AckNakPGUReducedProtocol  Acknowledge = 3
	AckNakPGUAlreadyUsed      Acknowledge = 4
)

// IsAck reports whether the code represents a successful write.
func (sf Acknowledge) IsAck() bool { return sf == AckOk }

func (sf Acknowledge) String() string {
	switch sf {
	case AckOk:
		return "Ack"
	case AckNak:
		return "Nak"
	case AckNakPassword:
		return "NakPassword"
	case AckNakPGUReducedProtocol:
		return "NakPGUReducedProtocol"
	case AckNakPGUAlreadyUsed:
		return "NakPGUAlreadyUsed"
	default:
		return "Unknown(" + strconv.Itoa(int(sf)) + ")"
	}
}

// Encode appends the acknowledge code as a big-endian u16.
func (sf Acknowledge) Encode(e *Encoder) error {
	e.WriteU16(uint16(sf))
	return nil
}

// DecodeAcknowledge reads a big-endian u16 acknowledge code.
func DecodeAcknowledge(d *Decoder) (Acknowledge, error) {
	v, err := d.ReadU16()
	if err != nil {
		return 0, err
	}
	return Acknowledge(v), nil
}
