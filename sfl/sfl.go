// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sfl implements the serial flash-loader protocol spoken by
// the BIOS of the boards: once the BIOS advertises its magic string on
// the serial link, a boot image can be uploaded in CRC-protected
// frames and executed in place.
package sfl // import "github.com/go-hdl/boards/sfl"

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"

	"github.com/sigurn/crc16"
)

// Protocol magic strings. The BIOS emits MagicReq when it is willing
// to serial-boot and expects MagicAck in reply.
var (
	MagicReq = []byte("sL5DdSMmkekro\n")
	MagicAck = []byte("z6IHG7cYDID6o\n")
)

// Frame commands.
const (
	CmdAbort = 0x00
	CmdLoad  = 0x01
	CmdJump  = 0x02
)

// Acknowledge codes returned by the BIOS after each frame.
const (
	AckSuccess  = 'K'
	AckCRCError = 'C'
	AckUnknown  = 'U'
	AckError    = 'E'
)

const (
	maxPayload = 255
	addrLen    = 4
	maxChunk   = maxPayload - addrLen

	maxRetries = 10
)

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// Frame is one flash-loader frame: a command and its payload,
// protected by a CRC-16/XMODEM checksum over both.
type Frame struct {
	Cmd     byte
	Payload []byte
}

// CRC returns the checksum of the frame.
func (frame Frame) CRC() uint16 {
	crc := crc16.Init(crcTable)
	crc = crc16.Update(crc, []byte{frame.Cmd}, crcTable)
	crc = crc16.Update(crc, frame.Payload, crcTable)
	return crc16.Complete(crc, crcTable)
}

// Encoder writes flash-loader frames to an output stream.
type Encoder struct {
	w   io.Writer
	err error
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the frame to the stream, with its length prefix and
// CRC-16 checksum.
func (enc *Encoder) Encode(frame Frame) error {
	if len(frame.Payload) > maxPayload {
		return fmt.Errorf("sfl: payload too large: %d", len(frame.Payload))
	}

	crc := frame.CRC()
	enc.write([]byte{byte(len(frame.Payload))})
	enc.write([]byte{byte(crc >> 8), byte(crc)})
	enc.write([]byte{frame.Cmd})
	enc.write(frame.Payload)

	if enc.err != nil {
		return fmt.Errorf("sfl: could not write frame: %w", enc.err)
	}
	return nil
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
}

// Boot uploads the boot image to the BIOS over rw and jumps to base.
// It waits for the BIOS magic request, acknowledges it, then sends the
// image in frames, retrying each frame a bounded number of times on
// CRC errors. Non-protocol bytes received while waiting for an
// acknowledge are forwarded to console.
func Boot(rw io.ReadWriter, image io.Reader, base uint32, console io.Writer, msg *log.Logger) error {
	data, err := io.ReadAll(image)
	if err != nil {
		return fmt.Errorf("sfl: could not read boot image: %w", err)
	}

	r := bufio.NewReader(rw)
	err = waitMagic(r, console)
	if err != nil {
		return err
	}
	_, err = rw.Write(MagicAck)
	if err != nil {
		return fmt.Errorf("sfl: could not acknowledge magic request: %w", err)
	}

	msg.Printf("uploading %d bytes to 0x%08x...", len(data), base)

	enc := NewEncoder(rw)
	addr := base
	for off := 0; off < len(data); off += maxChunk {
		end := off + maxChunk
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		payload := make([]byte, addrLen+len(chunk))
		binary.BigEndian.PutUint32(payload, addr)
		copy(payload[addrLen:], chunk)

		err = send(enc, r, console, Frame{Cmd: CmdLoad, Payload: payload})
		if err != nil {
			return err
		}
		addr += uint32(len(chunk))
	}

	var jump [addrLen]byte
	binary.BigEndian.PutUint32(jump[:], base)
	err = send(enc, r, console, Frame{Cmd: CmdJump, Payload: jump[:]})
	if err != nil {
		return err
	}

	msg.Printf("upload complete, booting at 0x%08x", base)
	return nil
}

// waitMagic consumes bytes from r until the magic request has been
// seen, forwarding non-protocol bytes to console.
func waitMagic(r io.ByteReader, console io.Writer) error {
	var n int
	for {
		c, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("sfl: could not read magic request: %w", err)
		}
		switch c {
		case MagicReq[n]:
			n++
			if n == len(MagicReq) {
				return nil
			}
		default:
			if console != nil {
				_, _ = console.Write(MagicReq[:n])
			}
			n = 0
			// the mismatching byte may itself start a match.
			if c == MagicReq[0] {
				n = 1
				continue
			}
			if console != nil {
				_, _ = console.Write([]byte{c})
			}
		}
	}
}

func send(enc *Encoder, r io.ByteReader, console io.Writer, frame Frame) error {
	for retry := 0; retry < maxRetries; retry++ {
		err := enc.Encode(frame)
		if err != nil {
			return err
		}
		ack, err := readAck(r, console)
		if err != nil {
			return err
		}
		switch ack {
		case AckSuccess:
			return nil
		case AckCRCError:
			continue
		case AckUnknown, AckError:
			return fmt.Errorf("sfl: frame rejected (ack=%q)", ack)
		}
	}
	return fmt.Errorf("sfl: too many CRC errors (retries=%d)", maxRetries)
}

func readAck(r io.ByteReader, console io.Writer) (byte, error) {
	for {
		c, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("sfl: could not read acknowledge: %w", err)
		}
		switch c {
		case AckSuccess, AckCRCError, AckUnknown, AckError:
			return c, nil
		default:
			if console != nil {
				_, _ = console.Write([]byte{c})
			}
		}
	}
}
