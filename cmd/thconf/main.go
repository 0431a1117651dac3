// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Temperature/humidity sensor configuration tool: changes the slave
// address and baud rate of an attached sensor with a raw config frame.
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
	fmt.Println("Temperature/humidity sensor configuration tool")
	fmt.Println("usage: thconf <baudrate> <slave_addr> <new_baudrate> <new_slave_addr>")
	fmt.Println()
	fmt.Println("Supported baud rates: 1200 2400 4800 9600 19200")
	fmt.Println("Valid slave addresses: 1..247")
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
	if len(args) < 4 {
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

	nums := make([]int, 4)
	for i, a := range args[:4] {
		n, err := strconv.Atoi(a)
		if err != nil {
			fmt.Printf("Invalid argument: %s\n", a)
			os.Exit(1)
		}
		nums[i] = n
	}
	if nums[1] < 0 || nums[1] > 255 || nums[3] < 0 || nums[3] > 255 {
		fmt.Println("Invalid slave address")
		usage()
		os.Exit(1)
	}

	sc := devconf.SensorConfig{
		Baud:         nums[0],
		SlaveAddr:    byte(nums[1]),
		NewBaud:      nums[2],
		NewSlaveAddr: byte(nums[3]),
	}
	if err := sc.Validate(); err != nil {
		fmt.Printf("%v\n", err)
		usage()
		os.Exit(1)
	}
	cfg.Serial.BaudRate = sc.Baud

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn := rtu.NewClient(cfg.Serial)
	if err := conn.Connect(ctx); err != nil {
		fmt.Printf("Failed to open serial port %s: %v\n", cfg.Serial.Device, err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := sc.Apply(ctx, conn); err != nil {
		fmt.Println("ERROR performing sensor configuration")
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sensor configured: slave address %d, baud rate %d\n", sc.NewSlaveAddr, sc.NewBaud)
}
