// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbusclient

import (
	"errors"
	"fmt"

	"github.com/sbus-go/gosbus/sbus"
)

// IOError wraps a failure from the underlying UDP socket, or a request's
// context expiring/being canceled before a reply arrived — from the
// caller's perspective both mean the request did not complete over the
// wire, so both stay inside this one error kind rather than adding a
// fourth.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// ArgumentsOutOfRangeError reports a caller-side argument that was
// rejected before any UDP traffic occurred.
type ArgumentsOutOfRangeError struct {
	Message string
}

func (e *ArgumentsOutOfRangeError) Error() string {
	return fmt.Sprintf("argument out of range: %s", e.Message)
}

// InvalidResponseError reports a decode failure or a telegram-shape
// mismatch on a received datagram.
type InvalidResponseError struct {
	Message string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response: %s", e.Message)
}

// wrapIOError constructs an IOError, or returns nil for a nil cause.
func wrapIOError(err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Err: err}
}

// wrapDecodeError maps a sbus decode failure onto the three-kind error
// taxonomy (§7): MissingData is generic, InvalidDataError carries its own
// reason through verbatim.
func wrapDecodeError(err error) error {
	if err == nil {
		return nil
	}
	var invalid *sbus.InvalidDataError
	if errors.As(err, &invalid) {
		return &InvalidResponseError{Message: invalid.Reason}
	}
	return &InvalidResponseError{Message: "The server sent invalid data"}
}

// wrapEncodeError maps a sbus encode failure onto ArgumentsOutOfRangeError.
func wrapEncodeError(err error) error {
	if err == nil {
		return nil
	}
	return &ArgumentsOutOfRangeError{Message: "Error encoding message"}
}
