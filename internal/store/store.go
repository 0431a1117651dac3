// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package store holds the register map a slave exposes on the bus.
package store

import (
	"fmt"
	"sync"
)

// DefaultSize is the register map size of the reference configuration.
const DefaultSize = 32

// Store is the addressable array of 16-bit registers. It is zero-initialized
// at creation and lives only as long as the owning process. The lock keeps
// it safe when a future setup serves more than one transport; the
// single-threaded slave engine pays only the uncontended cost.
type Store struct {
	mu   sync.RWMutex
	regs []uint16
}

// New creates a zero-initialized store of the given size.
func New(size int) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{
		regs: make([]uint16, size),
	}
}

// Size returns the number of addressable registers.
func (s *Store) Size() int {
	return len(s.regs)
}

// Read returns the value at addr.
func (s *Store) Read(addr uint16) (uint16, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(addr) >= len(s.regs) {
		return 0, fmt.Errorf("register address %d out of range [0, %d)", addr, len(s.regs))
	}
	return s.regs[addr], nil
}

// Write stores val at addr.
func (s *Store) Write(addr, val uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(addr) >= len(s.regs) {
		return fmt.Errorf("register address %d out of range [0, %d)", addr, len(s.regs))
	}
	s.regs[addr] = val
	return nil
}
