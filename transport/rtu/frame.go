// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"fmt"

	"github.com/telegea/modbus-rtu-tools/modbus/crc"
	rtupacket "github.com/telegea/modbus-rtu-tools/modbus/rtu"
)

// appendCRC returns the frame with its CRC trailer appended, low byte first.
func appendCRC(frame []byte) ([]byte, error) {
	length := len(frame) + 2
	if length > rtupacket.MaxSize {
		return nil, fmt.Errorf("modbus: length of frame '%v' must not be bigger than '%v'", length, rtupacket.MaxSize)
	}
	var c crc.CRC
	c.Reset().PushBytes(frame)
	sum := c.Value()

	out := make([]byte, 0, length)
	out = append(out, frame...)
	out = append(out, byte(sum), byte(sum>>8))
	return out, nil
}

// checkCRC validates the trailer of a received frame and returns the frame
// without it.
func checkCRC(raw []byte) ([]byte, error) {
	if len(raw) < rtupacket.MinSize {
		return nil, fmt.Errorf("modbus: frame length '%v' does not meet minimum '%v'", len(raw), rtupacket.MinSize)
	}
	var c crc.CRC
	c.Reset().PushBytes(raw[:len(raw)-2])
	checksum := uint16(raw[len(raw)-1])<<8 | uint16(raw[len(raw)-2])
	if checksum != c.Value() {
		return nil, fmt.Errorf("modbus: frame crc '%v' does not match expected '%v'", checksum, c.Value())
	}
	return raw[:len(raw)-2], nil
}
