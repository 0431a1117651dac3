// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package devconf implements the two non-standard frame exchanges used to
// configure this fleet's relay cards and T/H sensors. Both build fixed byte
// sequences directly instead of going through the generic codec.
package devconf

// BaudInvalid is the sentinel for a baud rate the sensor firmware does not
// accept.
const BaudInvalid byte = 0

// BaudCode maps a baud rate to the sensor's configuration code.
func BaudCode(baudrate int) byte {
	switch baudrate {
	case 1200:
		return 3
	case 2400:
		return 4
	case 4800:
		return 5
	case 9600:
		return 6
	case 19200:
		return 7
	default:
		return BaudInvalid
	}
}
