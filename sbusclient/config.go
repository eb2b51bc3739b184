// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbusclient

import (
	"errors"
	"time"
)

const (
	// Port is the default UDP port an S-Bus device listens on.
	Port = 5050

	// BroadcastStation is the station address used to query an unknown
	// device's own station number.
	BroadcastStation = 254
)

// defines the supported range for each Config field.
const (
	RequestTimeoutMin = 100 * time.Millisecond
	RequestTimeoutMax = 5 * time.Minute

	ReadBufferSizeMin = 32
	ReadBufferSizeMax = 65507
)

// Config defines a Client's transport behavior. The default is applied
// for each unspecified value.
type Config struct {
	// RequestTimeout bounds how long a typed call waits for its reply
	// when the caller's context carries no deadline of its own; a context
	// that already has a deadline is used as is and this value is ignored.
	RequestTimeout time.Duration

	// ReadBufferSize sizes the receiver's fixed read buffer. 256 bytes
	// comfortably holds the largest reply this core decodes; a larger
	// value only matters if a device pads its datagrams.
	ReadBufferSize int

	// ServerPort is the UDP port the device listens on.
	ServerPort int
}

// Valid applies the default for each unspecified value and range-checks
// the rest.
func (sf *Config) Valid() error {
	if sf == nil {
		return errors.New("invalid pointer")
	}

	if sf.RequestTimeout == 0 {
		sf.RequestTimeout = 2 * time.Second
	} else if sf.RequestTimeout < RequestTimeoutMin || sf.RequestTimeout > RequestTimeoutMax {
		return errors.New("RequestTimeout not in [100ms, 5m]")
	}

	if sf.ReadBufferSize == 0 {
		sf.ReadBufferSize = 256
	} else if sf.ReadBufferSize < ReadBufferSizeMin || sf.ReadBufferSize > ReadBufferSizeMax {
		return errors.New("ReadBufferSize not in [32, 65507]")
	}

	if sf.ServerPort == 0 {
		sf.ServerPort = Port
	} else if sf.ServerPort < 1 || sf.ServerPort > 65535 {
		return errors.New("ServerPort not a valid port number")
	}

	return nil
}

// DefaultConfig returns the default Config.
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 2 * time.Second,
		ReadBufferSize: 256,
		ServerPort:     Port,
	}
}
