// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package rtu implements byte framing for Modbus RTU: expected frame
// length calculation and the incremental response reader.
package rtu

const (
	MinSize = 4
	MaxSize = 256

	ExceptionSize = 5
)
