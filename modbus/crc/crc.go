// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package crc computes the CRC-16 (Modbus) integrity trailer.
package crc

// CRC accumulates the checksum over pushed bytes.
type CRC struct {
	crc uint16
}

// Reset initializes the accumulator. Must be called before the first push.
func (c *CRC) Reset() *CRC {
	c.crc = 0xFFFF
	return c
}

// PushBytes updates the checksum with the given bytes.
func (c *CRC) PushBytes(bs []byte) *CRC {
	for _, b := range bs {
		c.crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if c.crc&1 != 0 {
				c.crc = (c.crc >> 1) ^ 0xA001
			} else {
				c.crc >>= 1
			}
		}
	}
	return c
}

// Value returns the current checksum.
func (c *CRC) Value() uint16 {
	return c.crc
}
