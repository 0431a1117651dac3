// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Modbus RTU slave command line tool: serves an in-memory register map.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/telegea/modbus-rtu-tools/internal/cli"
	"github.com/telegea/modbus-rtu-tools/internal/config"
	"github.com/telegea/modbus-rtu-tools/internal/ports"
	"github.com/telegea/modbus-rtu-tools/internal/slave"
	"github.com/telegea/modbus-rtu-tools/internal/store"
	"github.com/telegea/modbus-rtu-tools/transport/rtu"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "Configuration file path.")
	device := pflag.StringP("device", "p", "", "Serial port device name.")
	listPorts := pflag.BoolP("list-ports", "l", false, "List serial ports and exit.")
	pflag.Parse()

	if *listPorts {
		if err := cli.PrintPorts(); err != nil {
			fmt.Printf("Failed to list serial ports: %v\n", err)
			os.Exit(1)
		}
		return
	}

	args := pflag.Args()
	if len(args) < 2 {
		fmt.Println("Modbus RTU slave")
		fmt.Println("usage: mbs <baudrate> <slave_addr>")
		return
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cli.SetupLogger(cfg.Log)
	if *device != "" {
		cfg.Serial.Device = *device
	}

	baudrate, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Invalid baudrate: %s\n", args[0])
		os.Exit(1)
	}
	ownAddr, err := strconv.Atoi(args[1])
	if err != nil || ownAddr < 1 || ownAddr > 247 {
		fmt.Printf("Invalid slave address: %s\n", args[1])
		os.Exit(1)
	}
	cfg.Serial.BaudRate = baudrate

	if !ports.Exists(cfg.Serial.Device) {
		slog.Warn("Serial device not detected on host", "device", cfg.Serial.Device)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn := rtu.NewListener(cfg.Serial)
	if err := conn.Connect(ctx); err != nil {
		slog.Error("Connection failed", "device", cfg.Serial.Device, "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	slog.Info("Modbus RTU slave listening", "device", cfg.Serial.Device, "baudRate", baudrate, "unit", ownAddr, "registers", cfg.Registers)

	engine := slave.New(byte(ownAddr), store.New(cfg.Registers), conn)
	if err := engine.Run(ctx); err != nil {
		slog.Error("Slave stopped with error", "err", err)
		os.Exit(1)
	}
	slog.Info("Goodbye.")
}
