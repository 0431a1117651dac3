// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package rtu implements the serial transport for Modbus RTU on top of
// grid-x/serial: Client for the master side, Listener for the slave side.
package rtu

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/telegea/modbus-rtu-tools/internal/config"
	rtupacket "github.com/telegea/modbus-rtu-tools/modbus/rtu"
)

// Client implements transport.Requester over a serial line.
type Client struct {
	serialPort
}

// NewClient allocates and initializes a RTU Client.
func NewClient(cfg config.SerialConfig) *Client {
	client := &Client{}
	client.applyConfig(cfg)
	client.IdleTimeout = serialIdleTimeout
	return client
}

// Request transmits one request frame and blocks for the matching response.
// The caller supplies the frame without the CRC trailer; the response comes
// back the same way. The mutex serializes transactions: on a half-duplex bus
// a new request must never go out before the previous response (or its
// timeout) resolves.
func (mb *Client) Request(ctx context.Context, frame []byte) ([]byte, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if err := mb.connect(ctx); err != nil {
		return nil, err
	}
	mb.lastActivity = time.Now()
	mb.startCloseTimer()

	aduRequest, err := appendCRC(frame)
	if err != nil {
		return nil, err
	}

	slog.Debug("send to modbus slave", "request", hex.EncodeToString(aduRequest))
	if _, err := mb.port.Write(aduRequest); err != nil {
		return nil, err
	}

	bytesToRead := rtupacket.CalculateResponseLength(aduRequest)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(mb.calculateDelay(len(aduRequest) + bytesToRead)):
	}

	data, err := rtupacket.ReadResponse(aduRequest[0], aduRequest[1], mb.port, time.Now().Add(mb.Config.Timeout))
	if err != nil {
		return nil, err
	}
	slog.Debug("recv from modbus slave", "response", hex.EncodeToString(data))

	return checkCRC(data)
}
