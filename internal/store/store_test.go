// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package store

import "testing"

func TestWriteThenRead(t *testing.T) {
	s := New(32)

	for addr := uint16(0); addr < 32; addr++ {
		want := addr*3 + 1
		if err := s.Write(addr, want); err != nil {
			t.Fatalf("Write(%d) failed: %v", addr, err)
		}
		got, err := s.Read(addr)
		if err != nil {
			t.Fatalf("Read(%d) failed: %v", addr, err)
		}
		if got != want {
			t.Errorf("Read(%d) = %d, want %d", addr, got, want)
		}
	}
}

func TestZeroInitialized(t *testing.T) {
	s := New(8)
	for addr := uint16(0); addr < 8; addr++ {
		got, err := s.Read(addr)
		if err != nil {
			t.Fatalf("Read(%d) failed: %v", addr, err)
		}
		if got != 0 {
			t.Errorf("Read(%d) = %d, want 0", addr, got)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	s := New(32)
	if _, err := s.Read(32); err == nil {
		t.Error("Read(32) succeeded, want error")
	}
	if err := s.Write(32, 1); err == nil {
		t.Error("Write(32) succeeded, want error")
	}
}

func TestNewDefaultsSize(t *testing.T) {
	if got := New(0).Size(); got != DefaultSize {
		t.Errorf("Size() = %d, want %d", got, DefaultSize)
	}
}
