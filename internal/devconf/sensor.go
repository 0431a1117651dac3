// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package devconf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/telegea/modbus-rtu-tools/modbus"
	"github.com/telegea/modbus-rtu-tools/transport"
)

// sensorEchoLen is how many leading bytes of the response must echo the
// request. The sensor answers with a plain single-register-write reply, so
// only the standard six bytes come back.
const sensorEchoLen = 6

// SensorConfig describes a T/H sensor reconfiguration: a standard
// write-single-register frame with two non-standard trailing bytes carrying
// the new unit address and baud-rate code.
type SensorConfig struct {
	SlaveAddr    byte
	NewSlaveAddr byte
	Baud         int
	NewBaud      int
}

// Validate rejects parameters the sensor would not accept, before any bus
// activity.
func (c SensorConfig) Validate() error {
	if BaudCode(c.Baud) == BaudInvalid {
		return fmt.Errorf("invalid baudrate %d", c.Baud)
	}
	if BaudCode(c.NewBaud) == BaudInvalid {
		return fmt.Errorf("invalid new baudrate %d", c.NewBaud)
	}
	if c.SlaveAddr < modbus.UnitIDMin || c.SlaveAddr > modbus.UnitIDMax {
		return fmt.Errorf("invalid slave address %d", c.SlaveAddr)
	}
	if c.NewSlaveAddr < modbus.UnitIDMin || c.NewSlaveAddr > modbus.UnitIDMax {
		return fmt.Errorf("invalid new slave address %d", c.NewSlaveAddr)
	}
	return nil
}

// Frame builds the 9-byte configuration request:
// {addr, 0x06, 0x00, 0x00, 0x00, 0x01, 0x02, new_addr, baud_code}.
func (c SensorConfig) Frame() []byte {
	return []byte{
		c.SlaveAddr, modbus.FuncCodeWriteSingleRegister,
		0x00, 0x00, // register 0
		0x00, 0x01, // value 1
		0x02, // two non-standard trailing bytes follow
		c.NewSlaveAddr,
		BaudCode(c.NewBaud),
	}
}

// Apply validates the parameters, transmits the configuration frame and
// checks the response. The sensor signals success by echoing the first six
// request bytes verbatim.
func (c SensorConfig) Apply(ctx context.Context, conn transport.Requester) error {
	if err := c.Validate(); err != nil {
		return err
	}

	frame := c.Frame()
	resp, err := conn.Request(ctx, frame)
	if err != nil {
		return fmt.Errorf("sensor configuration request failed: %w", err)
	}
	if len(resp) < sensorEchoLen {
		return fmt.Errorf("sensor response of %d bytes is too short", len(resp))
	}
	if !bytes.Equal(resp[:sensorEchoLen], frame[:sensorEchoLen]) {
		return fmt.Errorf("sensor did not confirm configuration, check parameters")
	}
	return nil
}
