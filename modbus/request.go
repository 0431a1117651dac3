// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import (
	"encoding/binary"
	"fmt"
)

// Request is one decoded Modbus request. Concrete types are ReadRequest,
// WriteSingleRequest, WriteMultipleRequest and UnsupportedRequest.
type Request interface {
	// Code returns the request's function code.
	Code() byte
}

// ReadRequest covers function codes 0x03 and 0x04.
type ReadRequest struct {
	FunctionCode byte
	Start        uint16
	Count        uint16
}

// WriteSingleRequest covers function code 0x06.
type WriteSingleRequest struct {
	Addr  uint16
	Value uint16
}

// WriteMultipleRequest covers function code 0x10.
type WriteMultipleRequest struct {
	Addr   uint16
	Values []uint16
}

// UnsupportedRequest carries any function code outside the supported set.
// The slave answers it with an IllegalFunction exception.
type UnsupportedRequest struct {
	FunctionCode byte
}

func (r ReadRequest) Code() byte          { return r.FunctionCode }
func (r WriteSingleRequest) Code() byte   { return FuncCodeWriteSingleRegister }
func (r WriteMultipleRequest) Code() byte { return FuncCodeWriteMultipleRegisters }
func (r UnsupportedRequest) Code() byte   { return r.FunctionCode }

// ParseRequest decodes a request frame (unit id, function code, payload;
// integrity trailer already validated and stripped by the transport) into a
// tagged Request. Every field access is preceded by a length check, so a
// truncated frame yields an error instead of an out-of-bounds read.
func ParseRequest(frame []byte) (unitID byte, req Request, err error) {
	if len(frame) < 2 {
		return 0, nil, fmt.Errorf("modbus: request length '%v' does not meet minimum '%v'", len(frame), 2)
	}
	unitID = frame[0]
	funcCode := frame[1]
	payload := frame[2:]

	switch funcCode {
	case FuncCodeReadHoldingRegisters, FuncCodeReadInputRegisters:
		if len(payload) < 4 {
			return 0, nil, fmt.Errorf("modbus: read request payload too short: %d", len(payload))
		}
		req = ReadRequest{
			FunctionCode: funcCode,
			Start:        binary.BigEndian.Uint16(payload[0:2]),
			Count:        binary.BigEndian.Uint16(payload[2:4]),
		}
	case FuncCodeWriteSingleRegister:
		if len(payload) < 4 {
			return 0, nil, fmt.Errorf("modbus: write request payload too short: %d", len(payload))
		}
		req = WriteSingleRequest{
			Addr:  binary.BigEndian.Uint16(payload[0:2]),
			Value: binary.BigEndian.Uint16(payload[2:4]),
		}
	case FuncCodeWriteMultipleRegisters:
		if len(payload) < 5 {
			return 0, nil, fmt.Errorf("modbus: write multiple request payload too short: %d", len(payload))
		}
		quantity := binary.BigEndian.Uint16(payload[2:4])
		byteCount := int(payload[4])
		if byteCount != int(quantity)*2 || len(payload) < 5+byteCount {
			return 0, nil, fmt.Errorf("modbus: write multiple byte count '%d' does not match quantity '%d'", byteCount, quantity)
		}
		values := make([]uint16, quantity)
		for i := range values {
			values[i] = binary.BigEndian.Uint16(payload[5+i*2:])
		}
		req = WriteMultipleRequest{
			Addr:   binary.BigEndian.Uint16(payload[0:2]),
			Values: values,
		}
	default:
		req = UnsupportedRequest{FunctionCode: funcCode}
	}
	return unitID, req, nil
}
