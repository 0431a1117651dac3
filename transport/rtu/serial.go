// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/grid-x/serial"

	"github.com/telegea/modbus-rtu-tools/internal/config"
)

const (
	serialIdleTimeout = 60 * time.Second
)

// serialPort has configuration and I/O controller.
type serialPort struct {
	// Serial port configuration.
	serial.Config

	IdleTimeout time.Duration

	mu sync.Mutex
	// port is platform-dependent data structure for serial port.
	port         io.ReadWriteCloser
	lastActivity time.Time
	closeTimer   *time.Timer
}

// applyConfig maps the tool configuration onto the serial driver config.
// The RS485 delays bracket every transmission at the driver level, so the
// pre-delay, the send and the post-delay act as one unit on the bus.
func (sp *serialPort) applyConfig(cfg config.SerialConfig) {
	sp.Config.Address = cfg.Device
	sp.Config.BaudRate = cfg.BaudRate
	sp.Config.DataBits = cfg.DataBits
	sp.Config.StopBits = cfg.StopBits
	sp.Config.Parity = cfg.Parity
	sp.Config.Timeout = cfg.Timeout
	if cfg.RS485 {
		sp.Config.RS485.Enabled = true
		sp.Config.RS485.DelayRtsBeforeSend = cfg.DelayRtsBeforeSend
		sp.Config.RS485.DelayRtsAfterSend = cfg.DelayRtsAfterSend
		sp.Config.RS485.RtsHighDuringSend = cfg.RtsHighDuringSend
		sp.Config.RS485.RtsHighAfterSend = cfg.RtsHighAfterSend
		sp.Config.RS485.RxDuringTx = cfg.RxDuringTx
	}
}

func (sp *serialPort) Connect(ctx context.Context) (err error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.connect(ctx)
}

// connect connects to the serial port if it is not connected. Caller must hold the mutex.
func (sp *serialPort) connect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if sp.port == nil {
		port, err := serial.Open(&sp.Config)
		if err != nil {
			return fmt.Errorf("could not open %s: %w", sp.Config.Address, err)
		}
		sp.port = port
	}
	return nil
}

func (sp *serialPort) Close() (err error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.close()
}

// close closes the serial port if it is connected. Caller must hold the mutex.
func (sp *serialPort) close() (err error) {
	if sp.port != nil {
		err = sp.port.Close()
		sp.port = nil
	}
	return
}

func (sp *serialPort) startCloseTimer() {
	if sp.IdleTimeout <= 0 {
		return
	}
	if sp.closeTimer == nil {
		sp.closeTimer = time.AfterFunc(sp.IdleTimeout, sp.closeIdle)
	} else {
		sp.closeTimer.Reset(sp.IdleTimeout)
	}
}

// closeIdle closes the connection if last activity is passed behind IdleTimeout.
func (sp *serialPort) closeIdle() {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.IdleTimeout <= 0 {
		return
	}

	if idle := time.Since(sp.lastActivity); idle >= sp.IdleTimeout {
		slog.Debug("closing serial port due to idle timeout", "idle", idle)
		sp.close()
	}
}

// calculateDelay calculates the needed delay to separate frames.
func (sp *serialPort) calculateDelay(chars int) time.Duration {
	var characterDelay, frameDelay int

	if sp.BaudRate <= 0 || sp.BaudRate > 19200 {
		characterDelay = 750
		frameDelay = 1750
	} else {
		characterDelay = 15000000 / sp.BaudRate
		frameDelay = 35000000 / sp.BaudRate
	}
	return time.Duration(characterDelay*chars+frameDelay) * time.Microsecond
}
