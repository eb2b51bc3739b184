// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbus

// WriteIntArrayRequest is the request body shared by WriteCounters,
// WriteRegisters, and WriteTimers: a starting address and the values to
// store there. The wire form prefixes the values with byte_length+1, where
// byte_length = len(Values)*4.
type WriteIntArrayRequest struct {
	Address uint16
	Values  []int32
}

func (sf WriteIntArrayRequest) Encode(e *Encoder) error {
	byteLength := len(sf.Values) * 4
	if byteLength+1 > 0xFF {
		return ErrOverflow
	}
	e.WriteU8(uint8(byteLength + 1))
	e.WriteU16(sf.Address)
	EncodeIntArrayResponse(e, sf.Values)
	return nil
}

// DecodeWriteIntArrayRequest reads byte_length_plus_1, then address, then
// byte_length/4 big-endian i32s. byte_length_plus_1-1 not divisible by 4
// fails with InvalidData("Invalid length").
func DecodeWriteIntArrayRequest(d *Decoder) (WriteIntArrayRequest, error) {
	blp1, err := d.ReadU8()
	if err != nil {
		return WriteIntArrayRequest{}, err
	}
	if blp1 == 0 {
		return WriteIntArrayRequest{}, NewInvalidDataError("Invalid length")
	}
	byteLength := blp1 - 1
	if byteLength%4 != 0 {
		return WriteIntArrayRequest{}, NewInvalidDataError("Invalid length")
	}
	address, err := d.ReadU16()
	if err != nil {
		return WriteIntArrayRequest{}, err
	}
	count := int(byteLength) / 4
	values := make([]int32, 0, count)
	for i := 0; i < count; i++ {
		v, err := d.ReadI32()
		if err != nil {
			return WriteIntArrayRequest{}, err
		}
		values = append(values, v)
	}
	return WriteIntArrayRequest{Address: address, Values: values}, nil
}

// WriteBoolArrayRequest is the request body shared by WriteFlags and
// WriteOutputs. The wire form prefixes the packed values with
// byte_length_plus_2 and also carries an explicit bit-length distinct from
// the byte length, since the final packed byte may have padding bits.
type WriteBoolArrayRequest struct {
	Address uint16
	Values  []bool
}

func (sf WriteBoolArrayRequest) Encode(e *Encoder) error {
	if len(sf.Values) == 0 {
		return ErrOverflow
	}
	byteLength := (len(sf.Values) + 7) / 8
	if byteLength+2 > 0xFF {
		return ErrOverflow
	}
	e.WriteU8(uint8(byteLength + 2))
	e.WriteU16(sf.Address)
	e.WriteU8(uint8(len(sf.Values) - 1))
	e.WriteBools(sf.Values)
	return nil
}

// DecodeWriteBoolArrayRequest reads byte_length_plus_2, address,
// bit_length_minus_1, and then byte_length packed bytes, truncated to
// bit_length booleans.
func DecodeWriteBoolArrayRequest(d *Decoder) (WriteBoolArrayRequest, error) {
	blp2, err := d.ReadU8()
	if err != nil {
		return WriteBoolArrayRequest{}, err
	}
	if blp2 < 2 {
		return WriteBoolArrayRequest{}, NewInvalidDataError("Invalid byte length")
	}
	byteLength := int(blp2) - 2

	address, err := d.ReadU16()
	if err != nil {
		return WriteBoolArrayRequest{}, err
	}

	blm1, err := d.ReadU8()
	if err != nil {
		return WriteBoolArrayRequest{}, err
	}
	bitLength := int(blm1) + 1

	raw, err := d.ReadBytes(byteLength)
	if err != nil {
		return WriteBoolArrayRequest{}, err
	}
	values, err := NewDecoder(raw).ReadBools(byteLength * 8)
	if err != nil {
		return WriteBoolArrayRequest{}, err
	}
	if bitLength < len(values) {
		values = values[:bitLength]
	}

	return WriteBoolArrayRequest{Address: address, Values: values}, nil
}

// WriteRealTimeClockRequest carries the RTC value to install on the device.
type WriteRealTimeClockRequest struct {
	RTC RealTimeClock
}

func (sf WriteRealTimeClockRequest) Encode(e *Encoder) error {
	return sf.RTC.Encode(e)
}

func DecodeWriteRealTimeClockRequest(d *Decoder) (WriteRealTimeClockRequest, error) {
	rtc, err := DecodeRealTimeClock(d)
	if err != nil {
		return WriteRealTimeClockRequest{}, err
	}
	return WriteRealTimeClockRequest{RTC: rtc}, nil
}
