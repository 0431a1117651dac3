// Copyright (c) 2026 Ondrej Wisniewski. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Modbus RTU master command line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/telegea/modbus-rtu-tools/internal/cli"
	"github.com/telegea/modbus-rtu-tools/internal/config"
	"github.com/telegea/modbus-rtu-tools/internal/master"
	"github.com/telegea/modbus-rtu-tools/internal/ports"
	"github.com/telegea/modbus-rtu-tools/transport/rtu"
)

func usage() {
	fmt.Println("Modbus RTU master")
	fmt.Println("usage: mbm r|R <baudrate> <slave_addr> <start_addr> <num_reg> [<poll_period>]")
	fmt.Println("       mbm w|W <baudrate> <slave_addr> <start_addr> <reg_val> [<reg_val> ...]")
	fmt.Println()
	fmt.Println("mode:  r - Modbus function code 0x03 (read holding registers)")
	fmt.Println("       R - Modbus function code 0x04 (read input registers)")
	fmt.Println("       w - Modbus function code 0x06 (preset single register)")
	fmt.Println("       W - Modbus function code 0x10 (preset multiple registers)")
}

// command is one fully validated invocation. All parameter errors are
// caught while building it, before the serial port is opened.
type command struct {
	mode       string
	baudrate   int
	slaveAddr  byte
	startAddr  uint16
	numReg     int
	pollPeriod int
	values     []uint16
}

// parseCommand validates the positional arguments: mode selector, bus
// parameters and the per-mode tail (register count and poll period for
// reads, value list for writes).
func parseCommand(args []string) (*command, error) {
	c := &command{mode: args[0]}

	baudrate, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid baudrate %q", args[1])
	}
	c.baudrate = baudrate

	slaveAddr, err := strconv.Atoi(args[2])
	if err != nil || slaveAddr < 0 || slaveAddr > 255 {
		return nil, fmt.Errorf("invalid slave address %q", args[2])
	}
	c.slaveAddr = byte(slaveAddr)

	startAddr, err := strconv.Atoi(args[3])
	if err != nil || startAddr < 0 || startAddr > 0xFFFF {
		return nil, fmt.Errorf("invalid start address %q", args[3])
	}
	c.startAddr = uint16(startAddr)

	switch c.mode {
	case "r", "R":
		numReg, err := strconv.Atoi(args[4])
		if err != nil || numReg < 1 {
			return nil, fmt.Errorf("invalid register count %q", args[4])
		}
		c.numReg = numReg
		if len(args) > 5 {
			pollPeriod, err := strconv.Atoi(args[5])
			if err != nil || pollPeriod < 0 {
				return nil, fmt.Errorf("invalid poll period %q", args[5])
			}
			c.pollPeriod = pollPeriod
		}
	case "w":
		value, err := strconv.ParseUint(args[4], 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid register value %q", args[4])
		}
		c.values = []uint16{uint16(value)}
	case "W":
		for _, arg := range args[4:] {
			v, err := strconv.ParseUint(arg, 0, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid register value %q", arg)
			}
			c.values = append(c.values, uint16(v))
		}
	default:
		return nil, fmt.Errorf("invalid mode %q", c.mode)
	}
	return c, nil
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
	if len(args) < 5 {
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

	cmd, err := parseCommand(args)
	if err != nil {
		fmt.Printf("%v\n", err)
		usage()
		os.Exit(1)
	}
	cfg.Serial.BaudRate = cmd.baudrate

	if !ports.Exists(cfg.Serial.Device) {
		fmt.Printf("Warning: serial device %s not detected on host\n", cfg.Serial.Device)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn := rtu.NewClient(cfg.Serial)
	if err := conn.Connect(ctx); err != nil {
		fmt.Printf("Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	engine := master.New(conn, cmd.slaveAddr, cfg.Registers)

	switch cmd.mode {
	case "r", "R":
		if err := runRead(ctx, engine, cmd); err != nil && !errors.Is(err, context.Canceled) {
			os.Exit(1)
		}
	case "w":
		if err := runWriteSingle(ctx, engine, cmd); err != nil {
			os.Exit(1)
		}
	case "W":
		if err := runWriteMultiple(ctx, engine, cmd); err != nil {
			os.Exit(1)
		}
	}
}

func runRead(ctx context.Context, engine *master.Engine, cmd *command) error {
	read := func(ctx context.Context) error {
		var values []uint16
		var err error
		if cmd.mode == "r" {
			values, err = engine.ReadHoldingRegisters(ctx, cmd.startAddr, cmd.numReg)
		} else {
			values, err = engine.ReadInputRegisters(ctx, cmd.startAddr, cmd.numReg)
		}
		if err != nil {
			if cmd.mode == "r" {
				fmt.Printf("Unable to read holding registers: %v\n", err)
			} else {
				fmt.Printf("Unable to read input registers: %v\n", err)
			}
			return err
		}
		for i, v := range values {
			fmt.Printf("%d: reg %d: 0x%04X (%d)\n", i, int(cmd.startAddr)+i, v, v)
		}
		return nil
	}

	return engine.Poll(ctx, time.Duration(cmd.pollPeriod)*time.Second, read)
}

func runWriteSingle(ctx context.Context, engine *master.Engine, cmd *command) error {
	value := cmd.values[0]
	if err := engine.WriteSingleRegister(ctx, cmd.startAddr, value); err != nil {
		fmt.Printf("Unable to write single register: %v\n", err)
		return err
	}
	fmt.Printf("reg %d: 0x%04X (%d)\n", cmd.startAddr, value, value)
	return nil
}

func runWriteMultiple(ctx context.Context, engine *master.Engine, cmd *command) error {
	n, err := engine.WriteMultipleRegisters(ctx, cmd.startAddr, cmd.values)
	if err != nil {
		fmt.Printf("Unable to write multiple registers: %v\n", err)
		return err
	}
	for i := 0; i < n; i++ {
		fmt.Printf("%d: reg %d: 0x%04X (%d)\n", i, int(cmd.startAddr)+i, cmd.values[i], cmd.values[i])
	}
	return nil
}
