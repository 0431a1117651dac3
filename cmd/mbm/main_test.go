// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.
package main

import (
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		ok   bool
	}{
		{"read holding", []string{"r", "9600", "5", "0", "4"}, true},
		{"read input with poll", []string{"R", "9600", "5", "0", "4", "2"}, true},
		{"write single", []string{"w", "9600", "5", "3", "0x1234"}, true},
		{"write multiple", []string{"W", "9600", "5", "0", "1", "2", "3"}, true},
		{"invalid mode", []string{"x", "9600", "5", "0", "1"}, false},
		{"invalid baudrate", []string{"r", "fast", "5", "0", "1"}, false},
		{"slave address out of range", []string{"r", "9600", "300", "0", "1"}, false},
		{"start address out of range", []string{"r", "9600", "5", "70000", "1"}, false},
		{"zero register count", []string{"r", "9600", "5", "0", "0"}, false},
		{"register count not a number", []string{"r", "9600", "5", "0", "many"}, false},
		{"negative poll period", []string{"r", "9600", "5", "0", "1", "-1"}, false},
		{"bad write value", []string{"w", "9600", "5", "0", "0x10000"}, false},
		{"bad value in list", []string{"W", "9600", "5", "0", "1", "oops"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := parseCommand(tt.args)
			if tt.ok {
				if err != nil {
					t.Fatalf("parseCommand(%v) failed: %v", tt.args, err)
				}
				if cmd.mode != tt.args[0] {
					t.Errorf("mode = %q, want %q", cmd.mode, tt.args[0])
				}
			} else if err == nil {
				t.Fatalf("parseCommand(%v) accepted invalid arguments", tt.args)
			}
		})
	}
}

func TestParseCommandFields(t *testing.T) {
	cmd, err := parseCommand([]string{"r", "19200", "10", "16", "8", "5"})
	if err != nil {
		t.Fatalf("parseCommand failed: %v", err)
	}
	if cmd.baudrate != 19200 || cmd.slaveAddr != 10 || cmd.startAddr != 16 {
		t.Errorf("bus parameters = %d/%d/%d, want 19200/10/16", cmd.baudrate, cmd.slaveAddr, cmd.startAddr)
	}
	if cmd.numReg != 8 || cmd.pollPeriod != 5 {
		t.Errorf("read parameters = %d/%d, want 8/5", cmd.numReg, cmd.pollPeriod)
	}

	cmd, err = parseCommand([]string{"W", "9600", "5", "0", "0x0A", "10"})
	if err != nil {
		t.Fatalf("parseCommand failed: %v", err)
	}
	if len(cmd.values) != 2 || cmd.values[0] != 10 || cmd.values[1] != 10 {
		t.Errorf("values = %v, want [10 10]", cmd.values)
	}
}
