// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package sbus implements the S-Bus application-protocol codec: frame
// envelopes, request/response bodies, the real-time-clock and device-float
// representations, and the CRC-16 frame check. It performs no I/O; see
// package sbusclient for the UDP transport built on top of it.
package sbus

import "errors"

// ErrOverflow is returned by an Encode method when the value cannot be
// represented on the wire (an out-of-range length or count).
var ErrOverflow = errors.New("sbus: value does not fit the wire encoding")

// ErrMissingData is returned by a decoder on a short read.
var ErrMissingData = errors.New("sbus: not enough bytes to decode")

// InvalidDataError carries a textual reason when the bytes present are
// well-formed in length but semantically wrong (bad checksum, bad BCD
// digit, inconsistent length field). It is distinct from ErrMissingData
// and does not wrap it.
type InvalidDataError struct {
	Reason string
}

func (sf *InvalidDataError) Error() string { return sf.Reason }

// NewInvalidDataError constructs an InvalidDataError with the given reason.
func NewInvalidDataError(reason string) error {
	return &InvalidDataError{Reason: reason}
}
