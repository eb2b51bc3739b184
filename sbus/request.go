// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbus

// Request is the body of a Message carrying TelegramAttribute Request:
// the target station, the opcode, and the opcode-specific payload.
type Request struct {
	Station   uint8
	CommandId CommandId
	Body      []byte
}

// Encode appends station, command id, and body verbatim.
func (sf Request) Encode(e *Encoder) error {
	e.WriteU8(sf.Station)
	e.WriteU8(uint8(sf.CommandId))
	e.WriteBytes(sf.Body)
	return nil
}

// DecodeRequest reads a station, command id, and the remaining bytes as
// the opcode-specific body.
func DecodeRequest(d *Decoder) (Request, error) {
	station, err := d.ReadU8()
	if err != nil {
		return Request{}, err
	}
	cmd, err := d.ReadU8()
	if err != nil {
		return Request{}, err
	}
	body, err := d.ReadBytes(d.Remaining())
	if err != nil {
		return Request{}, err
	}
	return Request{Station: station, CommandId: CommandId(cmd), Body: body}, nil
}
