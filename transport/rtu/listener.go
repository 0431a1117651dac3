// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"context"
	"fmt"

	"github.com/telegea/modbus-rtu-tools/internal/config"
	rtupacket "github.com/telegea/modbus-rtu-tools/modbus/rtu"
)

// Listener implements transport.Listener: it sits on the bus as a slave,
// scanning the byte stream for one request frame at a time.
type Listener struct {
	serialPort
}

// NewListener allocates and initializes a RTU Listener.
func NewListener(cfg config.SerialConfig) *Listener {
	l := &Listener{}
	l.applyConfig(cfg)
	return l
}

// Receive scans the serial stream for the next complete frame, validates its
// CRC trailer and copies the frame without the trailer into buf. Partial or
// corrupted frames are reported as errors; the caller decides whether to
// keep listening.
func (l *Listener) Receive(ctx context.Context, buf []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.connect(ctx); err != nil {
		return 0, err
	}

	raw := make([]byte, rtupacket.MaxSize)

	// Read 1 byte to unblock
	n, err := l.port.Read(raw[:1])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("modbus: empty read")
	}

	// Read header (attempt 7 bytes total to cover ByteCount for variable
	// length functions)
	current := 1
	need := 7

	for current < need {
		n, err := l.port.Read(raw[current:need])
		if err != nil {
			break
		}
		current += n
	}

	if current < 2 {
		return 0, fmt.Errorf("modbus: partial frame of %d bytes", current)
	}

	functionCode := raw[1]

	expectedLen, err := rtupacket.CalculateRequestLength(functionCode, raw[:current])
	if err != nil {
		return 0, err
	}
	if expectedLen > rtupacket.MaxSize {
		return 0, fmt.Errorf("modbus: frame length '%v' exceeds maximum '%v'", expectedLen, rtupacket.MaxSize)
	}

	// Read remaining
	for current < expectedLen {
		n, err := l.port.Read(raw[current:expectedLen])
		if err != nil {
			break
		}
		current += n
	}

	if current != expectedLen {
		return 0, fmt.Errorf("modbus: partial frame: got %d of %d bytes", current, expectedLen)
	}

	frame, err := checkCRC(raw[:expectedLen])
	if err != nil {
		return 0, err
	}
	if len(frame) > len(buf) {
		return 0, fmt.Errorf("modbus: frame of %d bytes exceeds buffer", len(frame))
	}
	return copy(buf, frame), nil
}

// Send transmits one reply frame, appending the CRC trailer.
func (l *Listener) Send(ctx context.Context, frame []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	if err := l.connect(ctx); err != nil {
		return 0, err
	}

	adu, err := appendCRC(frame)
	if err != nil {
		return 0, err
	}
	return l.port.Write(adu)
}
