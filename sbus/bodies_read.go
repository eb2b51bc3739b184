// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbus

// ReadArrayRequest is the request body shared by ReadCounters, ReadRegisters,
// ReadTimers, ReadFlags, ReadInputs, and ReadOutputs: an element count and a
// starting address. The wire form stores length-1, so Length must be >= 1.
type ReadArrayRequest struct {
	Address uint16
	Length  uint8
}

// Encode writes length_minus_1 then address. Length == 0 fails with
// ErrOverflow, since 0-1 does not fit a u8.
func (sf ReadArrayRequest) Encode(e *Encoder) error {
	if sf.Length == 0 {
		return ErrOverflow
	}
	e.WriteU8(sf.Length - 1)
	e.WriteU16(sf.Address)
	return nil
}

// DecodeReadArrayRequest reads length_minus_1 then address.
func DecodeReadArrayRequest(d *Decoder) (ReadArrayRequest, error) {
	lm1, err := d.ReadU8()
	if err != nil {
		return ReadArrayRequest{}, err
	}
	address, err := d.ReadU16()
	if err != nil {
		return ReadArrayRequest{}, err
	}
	return ReadArrayRequest{Address: address, Length: lm1 + 1}, nil
}

// EncodeIntArrayResponse appends values as consecutive big-endian i32s, the
// response body shared by ReadCounters, ReadRegisters, and ReadTimers.
func EncodeIntArrayResponse(e *Encoder, values []int32) {
	e.Reserve(len(values) * 4)
	for _, v := range values {
		e.WriteI32(v)
	}
}

// DecodeIntArrayResponse reads as many i32s as remain. A trailing
// remainder that isn't a multiple of 4 is silently truncated rather than
// rejected.
func DecodeIntArrayResponse(d *Decoder) ([]int32, error) {
	values := make([]int32, 0, d.Remaining()/4)
	for d.Remaining() >= 4 {
		v, err := d.ReadI32()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// EncodeBoolArrayResponse packs values, the response body shared by
// ReadFlags, ReadInputs, and ReadOutputs.
func EncodeBoolArrayResponse(e *Encoder, values []bool) {
	e.WriteBools(values)
}

// DecodeBoolArrayResponse unpacks every remaining byte as 8 booleans.
func DecodeBoolArrayResponse(d *Decoder) ([]bool, error) {
	return d.ReadBools(d.Remaining() * 8)
}

// ReadFirmwareVersionResponse is a NUL-terminated, lossily-decoded UTF-8
// string naming the device's firmware.
type ReadFirmwareVersionResponse struct {
	Version string
}

func (sf ReadFirmwareVersionResponse) Encode(e *Encoder) error {
	e.WriteString(sf.Version)
	return nil
}

func DecodeReadFirmwareVersionResponse(d *Decoder) (ReadFirmwareVersionResponse, error) {
	s, err := d.ReadString()
	if err != nil {
		return ReadFirmwareVersionResponse{}, err
	}
	return ReadFirmwareVersionResponse{Version: s}, nil
}

// ReadDisplayRegisterResponse carries the device's single display register.
type ReadDisplayRegisterResponse struct {
	Register uint32
}

func (sf ReadDisplayRegisterResponse) Encode(e *Encoder) error {
	e.WriteU32(sf.Register)
	return nil
}

func DecodeReadDisplayRegisterResponse(d *Decoder) (ReadDisplayRegisterResponse, error) {
	v, err := d.ReadU32()
	if err != nil {
		return ReadDisplayRegisterResponse{}, err
	}
	return ReadDisplayRegisterResponse{Register: v}, nil
}

// ReadSBusStationNumberResponse is the reply to a broadcast station-number
// query (station 254).
type ReadSBusStationNumberResponse struct {
	Station uint8
}

func (sf ReadSBusStationNumberResponse) Encode(e *Encoder) error {
	e.WriteU8(sf.Station)
	return nil
}

func DecodeReadSBusStationNumberResponse(d *Decoder) (ReadSBusStationNumberResponse, error) {
	v, err := d.ReadU8()
	if err != nil {
		return ReadSBusStationNumberResponse{}, err
	}
	return ReadSBusStationNumberResponse{Station: v}, nil
}

// ReadRealTimeClockResponse wraps the RTC returned by ReadRealTimeClock.
type ReadRealTimeClockResponse struct {
	RTC RealTimeClock
}

func (sf ReadRealTimeClockResponse) Encode(e *Encoder) error {
	return sf.RTC.Encode(e)
}

func DecodeReadRealTimeClockResponse(d *Decoder) (ReadRealTimeClockResponse, error) {
	rtc, err := DecodeRealTimeClock(d)
	if err != nil {
		return ReadRealTimeClockResponse{}, err
	}
	return ReadRealTimeClockResponse{RTC: rtc}, nil
}
