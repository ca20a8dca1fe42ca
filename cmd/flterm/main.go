// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command flterm is a serial console for the boards: it serial-boots a
// kernel image through the flash-loader protocol and then hands the
// link over to an interactive terminal.
package main // import "github.com/go-hdl/boards/cmd/flterm"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/jacobsa/go-serial/serial"
	"github.com/peterh/liner"

	"github.com/go-hdl/boards/sfl"
)

func main() {
	log.SetPrefix("flterm: ")
	log.SetFlags(0)

	var (
		port   = flag.String("port", "/dev/ttyUSB0", "serial port")
		baud   = flag.Uint("baud", 115200, "baud rate")
		kernel = flag.String("kernel", "", "kernel image to serial-boot")
		addr   = flag.String("kernel-addr", "0x40000000", "kernel load address")
	)
	flag.Parse()

	base, err := parseAddr(*addr)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	rw, err := serial.Open(serial.OpenOptions{
		PortName:        *port,
		BaudRate:        *baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		log.Fatalf("could not open %s: %+v", *port, err)
	}
	defer rw.Close()

	if *kernel != "" {
		err = boot(rw, *kernel, base)
		if err != nil {
			log.Fatalf("%+v", err)
		}
	}

	err = console(rw)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid kernel address %q: %w", s, err)
	}
	return uint32(v), nil
}

func boot(rw io.ReadWriter, kernel string, base uint32) error {
	f, err := os.Open(kernel)
	if err != nil {
		return fmt.Errorf("could not open kernel image: %w", err)
	}
	defer f.Close()

	msg := log.New(os.Stdout, "flterm: ", 0)
	return sfl.Boot(rw, f, base, os.Stdout, msg)
}

// console bridges the serial link and the terminal: board output goes
// to stdout, prompted lines go to the board.
func console(rw io.ReadWriter) error {
	go func() {
		_, err := io.Copy(os.Stdout, rw)
		if err != nil {
			log.Printf("could not read from serial port: %+v", err)
		}
	}()

	term := liner.NewLiner()
	defer term.Close()
	term.SetCtrlCAborts(true)

	for {
		line, err := term.Prompt("")
		switch {
		case err == nil:
			_, err = rw.Write([]byte(line + "\n"))
			if err != nil {
				return fmt.Errorf("could not write to serial port: %w", err)
			}
			term.AppendHistory(line)
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("could not read line: %w", err)
		}
	}
}
