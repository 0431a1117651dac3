// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package devconf

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type fakeConn struct {
	request  []byte
	response []byte
	err      error
}

func (c *fakeConn) Request(ctx context.Context, frame []byte) ([]byte, error) {
	c.request = append([]byte{}, frame...)
	return c.response, c.err
}

func (c *fakeConn) Connect(ctx context.Context) error { return nil }
func (c *fakeConn) Close() error                      { return nil }

func TestBaudCode(t *testing.T) {
	tests := []struct {
		baud int
		want byte
	}{
		{1200, 3},
		{2400, 4},
		{4800, 5},
		{9600, 6},
		{19200, 7},
		{38400, BaudInvalid},
		{0, BaudInvalid},
		{-9600, BaudInvalid},
	}
	for _, tt := range tests {
		if got := BaudCode(tt.baud); got != tt.want {
			t.Errorf("BaudCode(%d) = %d, want %d", tt.baud, got, tt.want)
		}
	}
}

func TestSettingsFrames(t *testing.T) {
	if got, want := SettingsReadFrame(1), []byte{0xFF, 3, 0, 1, 0, 1}; !bytes.Equal(got, want) {
		t.Errorf("read frame = %X, want %X", got, want)
	}
	if got, want := SettingsWriteFrame(1, 20), []byte{0xFF, 6, 0, 1, 0, 20}; !bytes.Equal(got, want) {
		t.Errorf("write frame = %X, want %X", got, want)
	}
}

func TestSettingsRead(t *testing.T) {
	conn := &fakeConn{response: []byte{0xFF, 0x03, 0x02, 0x00, 0x0A}}
	got, err := SettingsRead(context.Background(), conn, 1)
	if err != nil {
		t.Fatalf("SettingsRead failed: %v", err)
	}
	if got != 10 {
		t.Errorf("value = %d, want 10", got)
	}
	if !bytes.Equal(conn.request, []byte{0xFF, 3, 0, 1, 0, 1}) {
		t.Errorf("request = %X", conn.request)
	}
}

func TestSettingsWrite(t *testing.T) {
	conn := &fakeConn{response: []byte{0xFF, 0x06, 0x00, 0x02, 0x00, 0x14}}
	got, err := SettingsWrite(context.Background(), conn, 2, 20)
	if err != nil {
		t.Fatalf("SettingsWrite failed: %v", err)
	}
	if got != 20 {
		t.Errorf("value = %d, want 20", got)
	}
}

func TestSettingsTransportFailure(t *testing.T) {
	conn := &fakeConn{err: errors.New("timeout")}
	if _, err := SettingsRead(context.Background(), conn, 1); err == nil {
		t.Error("expected failure, got nil")
	}
}

func TestSettingsShortResponse(t *testing.T) {
	conn := &fakeConn{response: []byte{0xFF, 0x03, 0x02}}
	if _, err := SettingsRead(context.Background(), conn, 1); err == nil {
		t.Error("expected short response error, got nil")
	}
}

func TestSensorConfigFrame(t *testing.T) {
	cfg := SensorConfig{SlaveAddr: 10, NewSlaveAddr: 11, Baud: 9600, NewBaud: 19200}
	want := []byte{10, 6, 0, 0, 0, 1, 2, 11, 7}
	if got := cfg.Frame(); !bytes.Equal(got, want) {
		t.Errorf("frame = %X, want %X", got, want)
	}
}

func TestSensorConfigApply(t *testing.T) {
	cfg := SensorConfig{SlaveAddr: 10, NewSlaveAddr: 11, Baud: 9600, NewBaud: 19200}
	conn := &fakeConn{response: []byte{10, 6, 0, 0, 0, 1}}
	if err := cfg.Apply(context.Background(), conn); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !bytes.Equal(conn.request, cfg.Frame()) {
		t.Errorf("request = %X", conn.request)
	}
}

func TestSensorConfigEchoMismatch(t *testing.T) {
	cfg := SensorConfig{SlaveAddr: 10, NewSlaveAddr: 11, Baud: 9600, NewBaud: 19200}
	conn := &fakeConn{response: []byte{10, 6, 0, 0, 0, 2}}
	if err := cfg.Apply(context.Background(), conn); err == nil {
		t.Error("expected echo mismatch error, got nil")
	}
}

func TestSensorConfigShortResponse(t *testing.T) {
	cfg := SensorConfig{SlaveAddr: 10, NewSlaveAddr: 11, Baud: 9600, NewBaud: 19200}
	conn := &fakeConn{response: []byte{10, 6, 0}}
	if err := cfg.Apply(context.Background(), conn); err == nil {
		t.Error("expected short response error, got nil")
	}
}

func TestSensorConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  SensorConfig
	}{
		{"BadBaud", SensorConfig{SlaveAddr: 10, NewSlaveAddr: 11, Baud: 600, NewBaud: 19200}},
		{"BadNewBaud", SensorConfig{SlaveAddr: 10, NewSlaveAddr: 11, Baud: 9600, NewBaud: 38400}},
		{"ZeroAddr", SensorConfig{SlaveAddr: 0, NewSlaveAddr: 11, Baud: 9600, NewBaud: 19200}},
		{"AddrTooHigh", SensorConfig{SlaveAddr: 248, NewSlaveAddr: 11, Baud: 9600, NewBaud: 19200}},
		{"NewAddrTooHigh", SensorConfig{SlaveAddr: 10, NewSlaveAddr: 255, Baud: 9600, NewBaud: 19200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{}
			if err := tt.cfg.Apply(context.Background(), conn); err == nil {
				t.Error("expected validation error, got nil")
			}
			if conn.request != nil {
				t.Error("frame transmitted despite invalid parameters")
			}
		})
	}
}
