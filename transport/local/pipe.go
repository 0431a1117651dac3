// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package local provides an in-process bus connecting a master engine
// directly to a slave engine, without serial hardware. It mimics the
// half-duplex discipline: one request in flight, the response (or a timeout)
// resolves it. Frames travel without integrity trailers; there is no wire
// to corrupt them.
package local

import (
	"context"
	"fmt"
	"sync"
)

type bus struct {
	req     chan []byte
	resp    chan []byte
	done    chan struct{}
	closing sync.Once
}

// MasterEnd implements transport.Requester.
type MasterEnd struct {
	b *bus
}

// SlaveEnd implements transport.Listener.
type SlaveEnd struct {
	b *bus
}

// Pipe creates a connected master/slave pair.
func Pipe() (*MasterEnd, *SlaveEnd) {
	b := &bus{
		req:  make(chan []byte, 1),
		resp: make(chan []byte, 1),
		done: make(chan struct{}),
	}
	return &MasterEnd{b: b}, &SlaveEnd{b: b}
}

// Request delivers one frame to the slave end and blocks for its reply. A
// slave that silently discards the frame (address mismatch) leaves the
// master waiting until the context expires, exactly as on a real bus.
func (m *MasterEnd) Request(ctx context.Context, frame []byte) ([]byte, error) {
	out := make([]byte, len(frame))
	copy(out, frame)

	select {
	case m.b.req <- out:
	case <-m.b.done:
		return nil, fmt.Errorf("local bus closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case resp := <-m.b.resp:
		return resp, nil
	case <-m.b.done:
		return nil, fmt.Errorf("local bus closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *MasterEnd) Connect(ctx context.Context) error { return nil }

func (m *MasterEnd) Close() error {
	m.b.closeOnce()
	return nil
}

// Receive blocks for the next request frame from the master end.
func (s *SlaveEnd) Receive(ctx context.Context, buf []byte) (int, error) {
	select {
	case frame := <-s.b.req:
		if len(frame) > len(buf) {
			return 0, fmt.Errorf("frame of %d bytes exceeds buffer", len(frame))
		}
		return copy(buf, frame), nil
	case <-s.b.done:
		return 0, fmt.Errorf("local bus closed")
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Send delivers one reply frame to the waiting master end.
func (s *SlaveEnd) Send(ctx context.Context, frame []byte) (int, error) {
	out := make([]byte, len(frame))
	copy(out, frame)

	select {
	case s.b.resp <- out:
		return len(out), nil
	case <-s.b.done:
		return 0, fmt.Errorf("local bus closed")
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *SlaveEnd) Close() error {
	s.b.closeOnce()
	return nil
}

func (b *bus) closeOnce() {
	b.closing.Do(func() { close(b.done) })
}
