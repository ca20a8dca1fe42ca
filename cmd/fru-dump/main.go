// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fru-dump reads the FRU identification EEPROM of a board over
// I2C and prints its content.
package main // import "github.com/go-hdl/boards/cmd/fru-dump"

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-daq/smbus"

	"github.com/go-hdl/boards/fru"
)

// eepromSize is the number of bytes read from the EEPROM. FRU data of
// the supported boards fits in the first 256 bytes.
const eepromSize = 256

func main() {
	log.SetPrefix("fru-dump: ")
	log.SetFlags(0)

	var (
		bus  = flag.Int("bus", 1, "I2C bus number")
		addr = flag.Uint("addr", 0x50, "EEPROM I2C address")
	)
	flag.Parse()

	conn, err := smbus.Open(*bus, uint8(*addr))
	if err != nil {
		log.Fatalf("could not open I2C bus %d: %+v", *bus, err)
	}
	defer conn.Close()

	err = run(conn, uint8(*addr), os.Stdout)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

// conn is the subset of smbus.Conn used to read the EEPROM.
type conn interface {
	ReadReg(addr, reg uint8) (uint8, error)
}

func run(c conn, addr uint8, w io.Writer) error {
	raw := make([]byte, eepromSize)
	for i := range raw {
		v, err := c.ReadReg(addr, uint8(i))
		if err != nil {
			return fmt.Errorf("could not read EEPROM byte 0x%02x: %w", i, err)
		}
		raw[i] = v
	}

	data, err := fru.Decode(raw)
	if err != nil {
		return err
	}
	return dump(w, data)
}

func dump(w io.Writer, data fru.FRU) error {
	board := data.Board
	for _, field := range []struct {
		name  string
		value interface{}
	}{
		{"mfg-date", board.MfgDate.UTC().Format("2006-01-02 15:04")},
		{"manufacturer", board.Manufacturer},
		{"product", board.Product},
		{"serial", board.Serial},
		{"part-number", board.PartNumber},
		{"fru-file-id", board.FileID},
	} {
		_, err := fmt.Fprintf(w, "%-12s: %v\n", field.name, field.value)
		if err != nil {
			return fmt.Errorf("could not write FRU dump: %w", err)
		}
	}
	return nil
}
