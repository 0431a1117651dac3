// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package transport defines the narrow channel contract the protocol
// engines consume. Implementations own serial device access, integrity
// trailers, byte framing and RS485 direction control; the engines only see
// whole frames without the trailer.
package transport

import (
	"context"
)

// Requester is the master side of the half-duplex bus: one outstanding
// request at a time, each answered (or timed out) before the next is issued.
// Request appends the integrity trailer, transmits the frame, and returns
// the matching response with its trailer validated and stripped.
type Requester interface {
	Request(ctx context.Context, frame []byte) ([]byte, error)
	Connect(ctx context.Context) error
	Close() error
}

// Listener is the slave side of the bus. Receive blocks for one frame,
// bounded by the configured response timeout, and delivers it with the
// integrity trailer validated and stripped. Send transmits one reply frame,
// appending the trailer.
type Listener interface {
	Receive(ctx context.Context, buf []byte) (int, error)
	Send(ctx context.Context, frame []byte) (int, error)
	Close() error
}
