// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package cli carries the pieces every command shares: logger setup and
// serial port discovery output.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/telegea/modbus-rtu-tools/internal/config"
	"github.com/telegea/modbus-rtu-tools/internal/ports"
)

// SetupLogger installs the default slog handler according to configuration.
func SetupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// PrintPorts lists the serial devices present on the host.
func PrintPorts() error {
	list, err := ports.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range list {
		if p.VID != "" || p.PID != "" {
			fmt.Printf("%s\t%s (USB %s:%s)\n", p.Name, p.Description, p.VID, p.PID)
		} else {
			fmt.Printf("%s\t%s\n", p.Name, p.Description)
		}
	}
	return nil
}
