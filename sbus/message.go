// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbus

// Message is the UDP frame payload: the envelope that every request,
// response, and acknowledge telegram shares. total_length is the full
// datagram length including the trailing CRC (body length + 11); see
// DESIGN.md for the reasoning behind that formula.
type Message struct {
	SequenceNumber    uint16
	TelegramAttribute TelegramAttribute
	Body              []byte
}

// wireVersion and wireProtocolType are the only values ever transmitted;
// they are not validated on receive.
const (
	wireVersion      = 0x01
	wireProtocolType = 0x00
)

// EncodeMessage renders m as a complete datagram: the four-byte total
// length, the version/protocol/sequence/attribute header, the body, and
// the trailing CRC-16.
func EncodeMessage(m Message) ([]byte, error) {
	innerLen := 5 + len(m.Body) // version + protocol + sequence(2) + attribute + body
	totalLength := 4 + innerLen + 2
	if totalLength > 0xFFFFFFFF {
		return nil, ErrOverflow
	}

	e := NewEncoder()
	e.Reserve(totalLength)
	e.WriteU32(uint32(totalLength))
	e.WriteU8(wireVersion)
	e.WriteU8(wireProtocolType)
	e.WriteU16(m.SequenceNumber)
	e.WriteU8(uint8(m.TelegramAttribute))
	e.WriteBytes(m.Body)

	toCheck := e.Finish()
	crc := CRC16(toCheck)

	out := NewEncoder()
	out.Reserve(len(toCheck) + 2)
	out.WriteBytes(toCheck)
	out.WriteU16(crc)
	return out.Finish(), nil
}

// DecodeMessage parses a complete datagram, verifying its CRC-16.
func DecodeMessage(buf []byte) (Message, error) {
	d := NewDecoder(buf)

	totalLength, err := d.ReadU32()
	if err != nil {
		return Message{}, err
	}
	if totalLength < 6 {
		return Message{}, NewInvalidDataError("Invalid byte length")
	}

	inner, err := d.ReadBytes(int(totalLength) - 6)
	if err != nil {
		return Message{}, err
	}

	checksum, err := d.ReadU16()
	if err != nil {
		return Message{}, err
	}

	toCheck := NewEncoder()
	toCheck.Reserve(4 + len(inner))
	toCheck.WriteU32(totalLength)
	toCheck.WriteBytes(inner)
	if CRC16(toCheck.Finish()) != checksum {
		return Message{}, NewInvalidDataError("Checksum mismatch")
	}

	id := NewDecoder(inner)
	if _, err := id.ReadU8(); err != nil { // version, not validated
		return Message{}, err
	}
	if _, err := id.ReadU8(); err != nil { // protocol type, not validated
		return Message{}, err
	}
	seq, err := id.ReadU16()
	if err != nil {
		return Message{}, err
	}
	attr, err := id.ReadU8()
	if err != nil {
		return Message{}, err
	}
	body, err := id.ReadBytes(id.Remaining())
	if err != nil {
		return Message{}, err
	}

	return Message{
		SequenceNumber:    seq,
		TelegramAttribute: TelegramAttribute(attr),
		Body:              body,
	}, nil
}
