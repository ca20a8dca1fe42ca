// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fru decodes IPMI FRU inventory data, as found in the
// identification EEPROMs of DC-SCM boards: the common header and the
// board-info area, with plain and 6-bit ASCII type/length fields.
package fru // import "github.com/go-hdl/boards/fru"

import (
	"fmt"
	"strings"
	"time"
)

// mfgEpoch is the origin of FRU manufacturing dates.
var mfgEpoch = time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC)

// Header is the FRU common header. Offsets are in bytes from the start
// of the FRU data; a zero offset means the area is absent.
type Header struct {
	Version     byte
	Internal    int
	Chassis     int
	Board       int
	Product     int
	MultiRecord int
}

// BoardInfo is the decoded board-info area.
type BoardInfo struct {
	Language     byte
	MfgDate      time.Time
	Manufacturer string
	Product      string
	Serial       string
	PartNumber   string
	FileID       string
}

// FRU is a decoded FRU inventory.
type FRU struct {
	Header Header
	Board  BoardInfo
}

// Decode decodes the FRU inventory data in raw.
func Decode(raw []byte) (FRU, error) {
	var fru FRU
	hdr, err := DecodeHeader(raw)
	if err != nil {
		return fru, err
	}
	fru.Header = hdr

	if hdr.Board == 0 {
		return fru, fmt.Errorf("fru: no board-info area")
	}
	board, err := decodeBoard(raw, hdr.Board)
	if err != nil {
		return fru, err
	}
	fru.Board = board
	return fru, nil
}

// DecodeHeader decodes the FRU common header.
func DecodeHeader(raw []byte) (Header, error) {
	var hdr Header
	if len(raw) < 8 {
		return hdr, fmt.Errorf("fru: common header too short: %d", len(raw))
	}
	if raw[0] != 0x01 {
		return hdr, fmt.Errorf("fru: unknown header format version 0x%02x", raw[0])
	}
	if !checksumOK(raw[:8]) {
		return hdr, fmt.Errorf("fru: invalid common header checksum")
	}
	hdr = Header{
		Version:     raw[0],
		Internal:    int(raw[1]) * 8,
		Chassis:     int(raw[2]) * 8,
		Board:       int(raw[3]) * 8,
		Product:     int(raw[4]) * 8,
		MultiRecord: int(raw[5]) * 8,
	}
	return hdr, nil
}

func decodeBoard(raw []byte, off int) (BoardInfo, error) {
	var board BoardInfo
	if off+2 > len(raw) {
		return board, fmt.Errorf("fru: board-info area out of range")
	}
	if raw[off] != 0x01 {
		return board, fmt.Errorf("fru: unknown board-info format version 0x%02x", raw[off])
	}
	size := int(raw[off+1]) * 8
	if off+size > len(raw) || size < 8 {
		return board, fmt.Errorf("fru: invalid board-info area length %d", size)
	}
	area := raw[off : off+size]
	if !checksumOK(area) {
		return board, fmt.Errorf("fru: invalid board-info checksum")
	}

	board.Language = area[2]
	mins := int(area[3]) | int(area[4])<<8 | int(area[5])<<16
	board.MfgDate = mfgEpoch.Add(time.Duration(mins) * time.Minute)

	p := 6
	for _, field := range []*string{
		&board.Manufacturer,
		&board.Product,
		&board.Serial,
		&board.PartNumber,
		&board.FileID,
	} {
		if p >= len(area) || area[p] == 0xc1 {
			break
		}
		v, n, err := decodeField(area[p:])
		if err != nil {
			return board, err
		}
		*field = v
		p += n
	}
	return board, nil
}

// decodeField decodes one type/length field, returning the decoded
// string and the number of bytes consumed.
func decodeField(raw []byte) (string, int, error) {
	var (
		typ = raw[0] >> 6
		n   = int(raw[0] & 0x3f)
	)
	if 1+n > len(raw) {
		return "", 0, fmt.Errorf("fru: truncated type/length field")
	}
	data := raw[1 : 1+n]
	switch typ {
	case 0x03: // 8-bit ASCII
		return strings.TrimRight(string(data), " "), 1 + n, nil
	case 0x02: // 6-bit ASCII
		return decode6bit(data), 1 + n, nil
	default:
		return "", 0, fmt.Errorf("fru: unsupported field type %d", typ)
	}
}

// decode6bit unpacks 6-bit ASCII: each group of 3 bytes holds 4
// characters, offset from 0x20.
func decode6bit(data []byte) string {
	var (
		sb  strings.Builder
		acc uint32
		n   int
	)
	for _, b := range data {
		acc |= uint32(b) << n
		n += 8
		for n >= 6 {
			sb.WriteByte(byte(acc&0x3f) + 0x20)
			acc >>= 6
			n -= 6
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func checksumOK(area []byte) bool {
	var sum byte
	for _, b := range area {
		sum += b
	}
	return sum == 0
}
