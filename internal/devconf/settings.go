// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package devconf

import (
	"context"
	"fmt"

	"github.com/telegea/modbus-rtu-tools/modbus"
	"github.com/telegea/modbus-rtu-tools/transport"
)

// Relay cards in settings mode (powered on with all DIP switches off)
// answer on the reserved unit address 0xFF. Config register 1 holds the
// device address, register 2 the baud rate.
const (
	dataOffsetRead  = 3
	dataOffsetWrite = 4
)

// SettingsReadFrame builds the settings-mode query for one config register:
// {0xFF, 0x03, 0x00, reg, 0x00, 0x01}.
func SettingsReadFrame(regAddr byte) []byte {
	return []byte{modbus.SettingsUnitID, modbus.FuncCodeReadHoldingRegisters, 0x00, regAddr, 0x00, 0x01}
}

// SettingsWriteFrame builds the settings-mode write for one config register:
// {0xFF, 0x06, 0x00, reg, val_hi, val_lo}.
func SettingsWriteFrame(regAddr byte, value uint16) []byte {
	return []byte{modbus.SettingsUnitID, modbus.FuncCodeWriteSingleRegister, 0x00, regAddr, byte(value >> 8), byte(value)}
}

// SettingsRead queries a config register of a device in settings mode and
// returns the reported value.
func SettingsRead(ctx context.Context, conn transport.Requester, regAddr byte) (uint16, error) {
	return settingsExchange(ctx, conn, SettingsReadFrame(regAddr), dataOffsetRead)
}

// SettingsWrite sets a config register of a device in settings mode and
// returns the value the device reports back.
func SettingsWrite(ctx context.Context, conn transport.Requester, regAddr byte, value uint16) (uint16, error) {
	return settingsExchange(ctx, conn, SettingsWriteFrame(regAddr, value), dataOffsetWrite)
}

func settingsExchange(ctx context.Context, conn transport.Requester, frame []byte, offset int) (uint16, error) {
	resp, err := conn.Request(ctx, frame)
	if err != nil {
		return 0, fmt.Errorf("settings request failed: %w", err)
	}
	// The value sits at a fixed offset: after the byte count in a read
	// reply, after the register address in a write echo.
	if len(resp) < offset+2 {
		return 0, fmt.Errorf("settings response of %d bytes is too short", len(resp))
	}
	return uint16(resp[offset])<<8 | uint16(resp[offset+1]), nil
}
