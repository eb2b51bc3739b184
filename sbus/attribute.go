// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbus

import "strconv"

// TelegramAttribute tags the role of a Message. Unknown values are
// preserved rather than rejected, so a decoded garbage telegram is still
// diagnostic-friendly.
type TelegramAttribute uint8

const (
	AttributeRequest     TelegramAttribute = 0
	AttributeResponse    TelegramAttribute = 1
	AttributeAcknowledge TelegramAttribute = 2
)

// String renders the attribute's mnemonic, or "Unknown(n)".
func (sf TelegramAttribute) String() string {
	switch sf {
	case AttributeRequest:
		return "Request"
	case AttributeResponse:
		return "Response"
	case AttributeAcknowledge:
		return "Acknowledge"
	default:
		return "Unknown(" + strconv.Itoa(int(sf)) + ")"
	}
}
