// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.
package rtu

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/telegea/modbus-rtu-tools/internal/config"
	"github.com/telegea/modbus-rtu-tools/modbus/crc"
)

type mockPort struct {
	io.Reader
	io.Writer
}

func (m *mockPort) Close() error { return nil }

func withCRC(t *testing.T, frame []byte) []byte {
	t.Helper()
	var c crc.CRC
	c.Reset().PushBytes(frame)
	sum := c.Value()
	return append(append([]byte{}, frame...), byte(sum), byte(sum>>8))
}

func TestClient_Request(t *testing.T) {
	// Request: unit 01, ReadHoldingRegisters 0x0000 x1
	// Response: 01 03 02 AA BB
	reqFrame := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01}
	respFrame := []byte{0x01, 0x03, 0x02, 0xAA, 0xBB}

	expectedWire := withCRC(t, reqFrame)
	respWire := withCRC(t, respFrame)

	writer := &bytes.Buffer{}
	mock := &mockPort{Reader: bytes.NewReader(respWire), Writer: writer}

	client := NewClient(config.SerialConfig{})
	client.port = mock
	client.Config.Timeout = 100 * time.Millisecond

	got, err := client.Request(context.Background(), reqFrame)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if !bytes.Equal(writer.Bytes(), expectedWire) {
		t.Errorf("wire request mismatch.\nWant: %X\nGot:  %X", expectedWire, writer.Bytes())
	}
	if !bytes.Equal(got, respFrame) {
		t.Errorf("response mismatch.\nWant: %X\nGot:  %X", respFrame, got)
	}
}

func TestClient_CRCError(t *testing.T) {
	respWire := []byte{0x01, 0x03, 0x02, 0xAA, 0xBB, 0xFF, 0xFF} // Bad CRC

	writer := &bytes.Buffer{}
	mock := &mockPort{Reader: bytes.NewReader(respWire), Writer: writer}

	client := NewClient(config.SerialConfig{})
	client.port = mock
	client.Config.Timeout = 100 * time.Millisecond

	_, err := client.Request(context.Background(), []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01})
	if err == nil {
		t.Error("expected CRC error, got nil")
	}
}

func TestListener_Receive(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{"ReadHoldingRegisters", []byte{0x05, 0x03, 0x00, 0x03, 0x00, 0x01}},
		{"WriteSingleRegister", []byte{0x05, 0x06, 0x00, 0x03, 0x12, 0x34}},
		{"WriteMultipleRegisters", []byte{0x05, 0x10, 0x00, 0x01, 0x00, 0x02, 0x04, 0x11, 0x22, 0x33, 0x44}},
		{"UnsupportedFunction", []byte{0x05, 0x05, 0x00, 0x00, 0xFF, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := withCRC(t, tt.frame)
			l := NewListener(config.SerialConfig{})
			l.port = &mockPort{Reader: bytes.NewReader(wire), Writer: &bytes.Buffer{}}

			buf := make([]byte, 256)
			n, err := l.Receive(context.Background(), buf)
			if err != nil {
				t.Fatalf("Receive failed: %v", err)
			}
			if !bytes.Equal(buf[:n], tt.frame) {
				t.Errorf("frame mismatch.\nWant: %X\nGot:  %X", tt.frame, buf[:n])
			}
		})
	}
}

func TestListener_ReceiveBadCRC(t *testing.T) {
	wire := []byte{0x05, 0x06, 0x00, 0x03, 0x12, 0x34, 0xDE, 0xAD}
	l := NewListener(config.SerialConfig{})
	l.port = &mockPort{Reader: bytes.NewReader(wire), Writer: &bytes.Buffer{}}

	buf := make([]byte, 256)
	if _, err := l.Receive(context.Background(), buf); err == nil {
		t.Error("expected CRC error, got nil")
	}
}

func TestListener_Send(t *testing.T) {
	writer := &bytes.Buffer{}
	l := NewListener(config.SerialConfig{})
	l.port = &mockPort{Reader: bytes.NewReader(nil), Writer: writer}

	frame := []byte{0x05, 0x03, 0x02, 0x12, 0x34}
	if _, err := l.Send(context.Background(), frame); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	want := withCRC(t, frame)
	if !bytes.Equal(writer.Bytes(), want) {
		t.Errorf("wire reply mismatch.\nWant: %X\nGot:  %X", want, writer.Bytes())
	}
}
