// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Relay board configuration tool: reads and writes the board settings
// registers via the broadcast settings address.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/telegea/modbus-rtu-tools/internal/cli"
	"github.com/telegea/modbus-rtu-tools/internal/config"
	"github.com/telegea/modbus-rtu-tools/internal/devconf"
	"github.com/telegea/modbus-rtu-tools/transport/rtu"
)

func usage() {
	fmt.Println("Relay board configuration tool")
	fmt.Println("usage: relconf <reg_addr> [<reg_val>]")
	fmt.Println()
	fmt.Println("Reads the settings register at <reg_addr>, or writes <reg_val>")
	fmt.Println("to it when a value is given.")
}

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
	if len(args) < 1 || len(args) > 2 {
		usage()
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

	regAddr, err := strconv.Atoi(args[0])
	if err != nil || regAddr < 0 || regAddr > 255 {
		fmt.Printf("Invalid register address: %s\n", args[0])
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn := rtu.NewClient(cfg.Serial)
	if err := conn.Connect(ctx); err != nil {
		fmt.Printf("Failed to open serial port %s: %v\n", cfg.Serial.Device, err)
		os.Exit(1)
	}
	defer conn.Close()

	var value uint16
	if len(args) == 2 {
		v, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			fmt.Printf("Invalid register value: %s\n", args[1])
			os.Exit(1)
		}
		value, err = devconf.SettingsWrite(ctx, conn, byte(regAddr), uint16(v))
		if err != nil {
			fmt.Println("ERROR performing Modbus request")
			os.Exit(1)
		}
	} else {
		value, err = devconf.SettingsRead(ctx, conn, byte(regAddr))
		if err != nil {
			fmt.Println("ERROR performing Modbus request")
			os.Exit(1)
		}
	}
	fmt.Printf("reg %d: 0x%04X (%d)\n", regAddr, value, value)
}
