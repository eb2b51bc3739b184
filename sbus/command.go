// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbus

import "strconv"

// CommandId is the 8-bit opcode of a request. The ~80 other documented
// opcodes of the full S-Bus command set are out of scope for this core;
// any value not in the table below decodes as Unknown(n) rather than
// being rejected, so a CommandId round-trips through the wire even when
// this core does not implement it.
type CommandId uint8

// The 16 opcodes this core implements.
const (
	CommandReadCounters         CommandId = 0x00
	CommandReadDisplayRegister  CommandId = 0x01
	CommandReadFlags            CommandId = 0x02
	CommandReadInputs           CommandId = 0x03
	CommandReadRealTimeClock    CommandId = 0x04
	CommandReadOutputs          CommandId = 0x05
	CommandReadRegisters        CommandId = 0x06
	CommandReadTimers           CommandId = 0x07
	CommandWriteCounters        CommandId = 0x0A
	CommandWriteFlags           CommandId = 0x0B
	CommandWriteRealTimeClock   CommandId = 0x0C
	CommandWriteOutputs         CommandId = 0x0D
	CommandWriteRegisters       CommandId = 0x0E
	CommandWriteTimers          CommandId = 0x0F
	CommandReadSBusStationNumber CommandId = 0x1D
	CommandReadFirmwareVersion  CommandId = 0x20
)

var commandIdNames = map[CommandId]string{
	CommandReadCounters:          "ReadCounters",
	CommandReadDisplayRegister:   "ReadDisplayRegister",
	CommandReadFlags:             "ReadFlags",
	CommandReadInputs:            "ReadInputs",
	CommandReadRealTimeClock:     "ReadRealTimeClock",
	CommandReadOutputs:           "ReadOutputs",
	CommandReadRegisters:         "ReadRegisters",
	CommandReadTimers:            "ReadTimers",
	CommandWriteCounters:         "WriteCounters",
	CommandWriteFlags:            "WriteFlags",
	CommandWriteRealTimeClock:    "WriteRealTimeClock",
	CommandWriteOutputs:          "WriteOutputs",
	CommandWriteRegisters:        "WriteRegisters",
	CommandWriteTimers:           "WriteTimers",
	CommandReadSBusStationNumber: "ReadSBusStationNumber",
	CommandReadFirmwareVersion:   "ReadFirmwareVersion",
}

// String renders the opcode's mnemonic, or "Unknown(n)" for an
// unrecognized value.
func (sf CommandId) String() string {
	if name, ok := commandIdNames[sf]; ok {
		return name
	}
	return "Unknown(" + strconv.Itoa(int(sf)) + ")"
}
