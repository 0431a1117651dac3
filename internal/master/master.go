// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package master builds Modbus RTU requests, drives single-shot or polled
// exchanges and interprets the responses.
package master

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/telegea/modbus-rtu-tools/modbus"
	"github.com/telegea/modbus-rtu-tools/transport"
)

// Engine issues requests to one slave unit over a Requester transport.
type Engine struct {
	conn         transport.Requester
	unitID       byte
	maxRegisters int

	// Sleep waits between poll cycles. Tests replace it to drive the loop
	// deterministically.
	Sleep func(ctx context.Context, d time.Duration) error
}

// New creates a master engine talking to unitID. maxRegisters is the
// register map capacity requests are clamped to before transmission.
func New(conn transport.Requester, unitID byte, maxRegisters int) *Engine {
	return &Engine{
		conn:         conn,
		unitID:       unitID,
		maxRegisters: maxRegisters,
		Sleep:        sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// clampCount silently truncates a requested register count to the map
// capacity. Oversized requests are never rejected.
func (e *Engine) clampCount(count int) int {
	if count > e.maxRegisters {
		return e.maxRegisters
	}
	return count
}

// ReadHoldingRegisters reads count registers starting at start using
// function code 0x03.
func (e *Engine) ReadHoldingRegisters(ctx context.Context, start uint16, count int) ([]uint16, error) {
	return e.read(ctx, modbus.FuncCodeReadHoldingRegisters, start, count)
}

// ReadInputRegisters reads count registers starting at start using function
// code 0x04.
func (e *Engine) ReadInputRegisters(ctx context.Context, start uint16, count int) ([]uint16, error) {
	return e.read(ctx, modbus.FuncCodeReadInputRegisters, start, count)
}

func (e *Engine) read(ctx context.Context, funcCode byte, start uint16, count int) ([]uint16, error) {
	count = e.clampCount(count)

	frame := []byte{
		e.unitID, funcCode,
		byte(start >> 8), byte(start),
		byte(count >> 8), byte(count),
	}

	resp, err := e.conn.Request(ctx, frame)
	if err != nil {
		return nil, err
	}
	data, err := checkResponse(e.unitID, funcCode, resp)
	if err != nil {
		return nil, err
	}

	if len(data) < 1 || int(data[0]) != count*2 || len(data) < 1+count*2 {
		return nil, fmt.Errorf("modbus: response did not deliver %d registers", count)
	}

	values := make([]uint16, count)
	for i := range values {
		values[i] = binary.BigEndian.Uint16(data[1+i*2:])
	}
	return values, nil
}

// WriteSingleRegister writes value to addr using function code 0x06 and
// verifies the device's echo confirms exactly that write.
func (e *Engine) WriteSingleRegister(ctx context.Context, addr, value uint16) error {
	frame := []byte{
		e.unitID, modbus.FuncCodeWriteSingleRegister,
		byte(addr >> 8), byte(addr),
		byte(value >> 8), byte(value),
	}

	resp, err := e.conn.Request(ctx, frame)
	if err != nil {
		return err
	}
	data, err := checkResponse(e.unitID, modbus.FuncCodeWriteSingleRegister, resp)
	if err != nil {
		return err
	}

	if len(data) < 4 ||
		binary.BigEndian.Uint16(data[0:2]) != addr ||
		binary.BigEndian.Uint16(data[2:4]) != value {
		return fmt.Errorf("modbus: device did not confirm write of register %d", addr)
	}
	return nil
}

// WriteMultipleRegisters writes values starting at addr using function code
// 0x10. The value count is capped to the register map capacity before
// transmission; the number of registers actually written is returned and
// verified against the device's confirmation.
func (e *Engine) WriteMultipleRegisters(ctx context.Context, addr uint16, values []uint16) (int, error) {
	count := e.clampCount(len(values))
	values = values[:count]

	frame := make([]byte, 0, 7+count*2)
	frame = append(frame,
		e.unitID, modbus.FuncCodeWriteMultipleRegisters,
		byte(addr>>8), byte(addr),
		byte(count>>8), byte(count),
		byte(count*2),
	)
	for _, v := range values {
		frame = append(frame, byte(v>>8), byte(v))
	}

	resp, err := e.conn.Request(ctx, frame)
	if err != nil {
		return 0, err
	}
	data, err := checkResponse(e.unitID, modbus.FuncCodeWriteMultipleRegisters, resp)
	if err != nil {
		return 0, err
	}

	if len(data) < 4 ||
		binary.BigEndian.Uint16(data[0:2]) != addr ||
		int(binary.BigEndian.Uint16(data[2:4])) != count {
		return 0, fmt.Errorf("modbus: device did not confirm write of %d registers", count)
	}
	return count, nil
}

// Poll runs fn, then repeats it every period until fn fails or the context
// is canceled. A period of zero executes fn exactly once. The first failure
// ends the loop and is returned to the caller.
func (e *Engine) Poll(ctx context.Context, period time.Duration, fn func(context.Context) error) error {
	for {
		if err := fn(ctx); err != nil {
			return err
		}
		if period <= 0 {
			return nil
		}
		if err := e.Sleep(ctx, period); err != nil {
			return err
		}
	}
}

// checkResponse validates unit id and function code of a response frame and
// returns its payload. An exception reply surfaces as *modbus.Error.
func checkResponse(unitID, funcCode byte, resp []byte) ([]byte, error) {
	if len(resp) < 2 {
		return nil, fmt.Errorf("modbus: response length '%v' does not meet minimum '%v'", len(resp), 2)
	}
	if resp[0] != unitID {
		return nil, fmt.Errorf("modbus: response unit id '%v' does not match request '%v'", resp[0], unitID)
	}
	switch resp[1] {
	case funcCode:
		return resp[2:], nil
	case funcCode | 0x80:
		if len(resp) < 3 {
			return nil, fmt.Errorf("modbus: truncated exception reply")
		}
		return nil, &modbus.Error{FunctionCode: resp[1], ExceptionCode: resp[2]}
	default:
		return nil, fmt.Errorf("modbus: response function code '%v' does not match request '%v'", resp[1], funcCode)
	}
}
