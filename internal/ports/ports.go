// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package ports discovers serial devices for the tools' --list-ports flag.
package ports

import (
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Info describes one detected serial port.
type Info struct {
	Name        string
	Description string
	VID         string
	PID         string
}

// List returns the detailed list of serial ports present on the host.
func List() ([]Info, error) {
	detected, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var result []Info
	for _, p := range detected {
		result = append(result, Info{
			Name:        p.Name,
			Description: p.Product,
			VID:         p.VID,
			PID:         p.PID,
		})
	}
	return result, nil
}

// Exists reports whether the named port is present on the host.
func Exists(name string) bool {
	names, err := serial.GetPortsList()
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
