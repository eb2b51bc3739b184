// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbus

import (
	"encoding/binary"
	"strings"
)

// Encoder accumulates the big-endian byte encoding of a telegram or one of
// its nested values. The zero value is ready to use.
type Encoder struct {
	this []byte
}

// NewEncoder returns an Encoder with a small pre-sized buffer.
func NewEncoder() *Encoder {
	return &Encoder{this: make([]byte, 0, 16)}
}

// Reserve grows the backing buffer's capacity by additional bytes.
func (e *Encoder) Reserve(additional int) {
	if cap(e.this)-len(e.this) >= additional {
		return
	}
	grown := make([]byte, len(e.this), len(e.this)+additional)
	copy(grown, e.this)
	e.this = grown
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.this) }

// WriteU8 appends a single byte.
func (e *Encoder) WriteU8(v uint8) { e.this = append(e.this, v) }

// WriteU16 appends a big-endian uint16.
func (e *Encoder) WriteU16(v uint16) {
	e.this = binary.BigEndian.AppendUint16(e.this, v)
}

// WriteU32 appends a big-endian uint32.
func (e *Encoder) WriteU32(v uint32) {
	e.this = binary.BigEndian.AppendUint32(e.this, v)
}

// WriteI32 appends a big-endian int32.
func (e *Encoder) WriteI32(v int32) {
	e.this = binary.BigEndian.AppendUint32(e.this, uint32(v))
}

// WriteBytes appends a raw byte slice verbatim.
func (e *Encoder) WriteBytes(v []byte) { e.this = append(e.this, v...) }

// WriteString appends a NUL-terminated UTF-8 string.
func (e *Encoder) WriteString(v string) {
	e.WriteBytes([]byte(v))
	e.WriteU8(0)
}

// WriteBools packs values LSB-first, bit i of byte k holding index k*8+i,
// emitting ceil(len(values)/8) bytes.
func (e *Encoder) WriteBools(values []bool) {
	byteLength := (len(values) + 7) / 8
	e.Reserve(byteLength)
	for i := 0; i < byteLength; i++ {
		var b byte
		for i2 := 0; i2 < 8; i2++ {
			idx := i*8 + i2
			if idx < len(values) && values[idx] {
				b |= 1 << uint(i2)
			}
		}
		e.WriteU8(b)
	}
}

// Finish returns the accumulated bytes.
func (e *Encoder) Finish() []byte { return e.this }

// Decoder consumes the big-endian byte encoding of a telegram or one of
// its nested values.
type Decoder struct {
	this []byte
}

// NewDecoder wraps buffer for sequential reads. The Decoder does not copy
// buffer; callers must not mutate it while decoding.
func NewDecoder(buffer []byte) *Decoder {
	return &Decoder{this: buffer}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.this) }

// ReadU8 consumes one byte.
func (d *Decoder) ReadU8() (uint8, error) {
	if len(d.this) < 1 {
		return 0, ErrMissingData
	}
	v := d.this[0]
	d.this = d.this[1:]
	return v, nil
}

// ReadU16 consumes a big-endian uint16.
func (d *Decoder) ReadU16() (uint16, error) {
	if len(d.this) < 2 {
		return 0, ErrMissingData
	}
	v := binary.BigEndian.Uint16(d.this)
	d.this = d.this[2:]
	return v, nil
}

// ReadU32 consumes a big-endian uint32.
func (d *Decoder) ReadU32() (uint32, error) {
	if len(d.this) < 4 {
		return 0, ErrMissingData
	}
	v := binary.BigEndian.Uint32(d.this)
	d.this = d.this[4:]
	return v, nil
}

// ReadI32 consumes a big-endian int32.
func (d *Decoder) ReadI32() (int32, error) {
	v, err := d.ReadU32()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ReadBytes consumes and returns length raw bytes.
func (d *Decoder) ReadBytes(length int) ([]byte, error) {
	if len(d.this) < length {
		return nil, ErrMissingData
	}
	v := d.this[:length]
	d.this = d.this[length:]
	return v, nil
}

// ReadString consumes bytes up to and including the first NUL, and
// lossily decodes the bytes before it as UTF-8.
func (d *Decoder) ReadString() (string, error) {
	i := 0
	for ; i < len(d.this); i++ {
		if d.this[i] == 0 {
			break
		}
	}
	if i == len(d.this) {
		return "", ErrMissingData
	}
	raw := d.this[:i]
	d.this = d.this[i+1:]
	return lossyUTF8(raw), nil
}

// ReadBools consumes ceil(length/8) bytes and returns exactly length
// booleans, discarding surplus bits in the final byte.
func (d *Decoder) ReadBools(length int) ([]bool, error) {
	byteLength := (length + 7) / 8
	raw, err := d.ReadBytes(byteLength)
	if err != nil {
		return nil, err
	}
	values := make([]bool, 0, length)
	for _, b := range raw {
		for i2 := 0; i2 < 8 && len(values) < length; i2++ {
			values = append(values, b&(1<<uint(i2)) != 0)
		}
	}
	return values, nil
}

// lossyUTF8 replaces invalid byte sequences with the Unicode replacement
// character instead of failing to decode.
func lossyUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
