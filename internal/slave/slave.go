// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package slave implements the receive-dispatch-reply loop of a Modbus RTU
// slave serving an in-memory register map.
package slave

import (
	"context"
	"log/slog"

	"github.com/telegea/modbus-rtu-tools/internal/store"
	"github.com/telegea/modbus-rtu-tools/modbus"
	"github.com/telegea/modbus-rtu-tools/modbus/rtu"
	"github.com/telegea/modbus-rtu-tools/transport"
)

// Engine serves one unit address on the bus. The register store is bound
// once at construction; no per-frame resources are allocated before the
// address check, so traffic for other units on a shared bus costs nothing.
type Engine struct {
	unitID byte
	store  *store.Store
	conn   transport.Listener
}

// New creates a slave engine serving unitID from st over conn.
func New(unitID byte, st *store.Store, conn transport.Listener) *Engine {
	return &Engine{
		unitID: unitID,
		store:  st,
		conn:   conn,
	}
}

// Run executes receive cycles until the context is canceled. Per-cycle
// faults (receive timeout, malformed frame, send failure) are logged and
// the loop continues; only cancellation ends it.
func (e *Engine) Run(ctx context.Context) error {
	buf := make([]byte, rtu.MaxSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := e.conn.Receive(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("receive failed", "unit", e.unitID, "err", err)
			continue
		}

		unitID, req, err := modbus.ParseRequest(buf[:n])
		if err != nil {
			slog.Warn("malformed request discarded", "unit", e.unitID, "err", err)
			continue
		}

		// Frames addressed to other units are silently ignored.
		if unitID != e.unitID {
			continue
		}

		resp := e.dispatch(req)

		frame := make([]byte, 0, 2+len(resp.Data))
		frame = append(frame, e.unitID, resp.FunctionCode)
		frame = append(frame, resp.Data...)

		if _, err := e.conn.Send(ctx, frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("failed to send reply", "unit", e.unitID, "func", resp.FunctionCode, "err", err)
		}
	}
}

// dispatch executes one decoded request against the register store and
// returns the reply PDU, success or exception.
func (e *Engine) dispatch(req modbus.Request) modbus.ProtocolDataUnit {
	switch r := req.(type) {
	case modbus.ReadRequest:
		return e.handleRead(r)
	case modbus.WriteSingleRequest:
		return e.handleWriteSingle(r)
	default:
		// 0x10 included: this slave serves single-register writes only,
		// matching the relay and sensor firmware it stands in for.
		slog.Warn("invalid operation", "unit", e.unitID, "func", req.Code())
		return modbus.Exception(req.Code(), modbus.ExceptionCodeIllegalFunction)
	}
}

func (e *Engine) handleRead(r modbus.ReadRequest) modbus.ProtocolDataUnit {
	size := e.store.Size()
	if int(r.Start) >= size {
		return modbus.Exception(r.FunctionCode, modbus.ExceptionCodeIllegalDataAddress)
	}

	count := int(r.Count)
	if int(r.Start)+count > size {
		count = size - int(r.Start)
	}

	data := make([]byte, 1, 1+count*2)
	data[0] = byte(count * 2)
	for i := 0; i < count; i++ {
		val, err := e.store.Read(r.Start + uint16(i))
		if err != nil {
			return modbus.Exception(r.FunctionCode, modbus.ExceptionCodeSlaveDeviceFailure)
		}
		data = append(data, byte(val>>8), byte(val))
	}

	return modbus.ProtocolDataUnit{
		FunctionCode: r.FunctionCode,
		Data:         data,
	}
}

func (e *Engine) handleWriteSingle(r modbus.WriteSingleRequest) modbus.ProtocolDataUnit {
	if int(r.Addr) >= e.store.Size() {
		return modbus.Exception(modbus.FuncCodeWriteSingleRegister, modbus.ExceptionCodeIllegalDataAddress)
	}

	if err := e.store.Write(r.Addr, r.Value); err != nil {
		return modbus.Exception(modbus.FuncCodeWriteSingleRegister, modbus.ExceptionCodeSlaveDeviceFailure)
	}

	// Success reply echoes address and value.
	return modbus.ProtocolDataUnit{
		FunctionCode: modbus.FuncCodeWriteSingleRegister,
		Data:         []byte{byte(r.Addr >> 8), byte(r.Addr), byte(r.Value >> 8), byte(r.Value)},
	}
}
