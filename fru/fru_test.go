// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fru

import (
	"testing"
	"time"
)

// tlv encodes an 8-bit ASCII type/length field.
func tlv(s string) []byte {
	return append([]byte{0xc0 | byte(len(s))}, s...)
}

func checksum(area []byte) byte {
	var sum byte
	for _, b := range area {
		sum += b
	}
	return -sum
}

// makeFRU builds a FRU image with a common header and a board-info
// area holding the given fields.
func makeFRU(t *testing.T, date time.Time, fields ...string) []byte {
	t.Helper()

	mins := int(date.Sub(mfgEpoch).Minutes())
	area := []byte{
		0x01, 0x00, // version, length (patched below)
		25, // english
		byte(mins), byte(mins >> 8), byte(mins >> 16),
	}
	for _, field := range fields {
		area = append(area, tlv(field)...)
	}
	area = append(area, 0xc1)
	for len(area)%8 != 7 {
		area = append(area, 0x00)
	}
	area[1] = byte((len(area) + 1) / 8)
	area = append(area, checksum(area))

	hdr := []byte{0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
	hdr = append(hdr, checksum(hdr))

	return append(hdr, area...)
}

func TestDecode(t *testing.T) {
	date := time.Date(2022, time.March, 1, 12, 0, 0, 0, time.UTC)
	raw := makeFRU(t, date, "Antmicro", "DC-SCM", "SN12345", "PN-0042", "fru-v1")

	fru, err := Decode(raw)
	if err != nil {
		t.Fatalf("could not decode FRU data: %+v", err)
	}

	if got, want := fru.Header.Board, 8; got != want {
		t.Fatalf("invalid board-info offset: got=%d, want=%d", got, want)
	}
	board := fru.Board
	if got, want := board.Language, byte(25); got != want {
		t.Fatalf("invalid language: got=%d, want=%d", got, want)
	}
	if !board.MfgDate.Equal(date) {
		t.Fatalf("invalid mfg date: got=%v, want=%v", board.MfgDate, date)
	}
	for _, tc := range []struct {
		name string
		got  string
		want string
	}{
		{"manufacturer", board.Manufacturer, "Antmicro"},
		{"product", board.Product, "DC-SCM"},
		{"serial", board.Serial, "SN12345"},
		{"part-number", board.PartNumber, "PN-0042"},
		{"file-id", board.FileID, "fru-v1"},
	} {
		if tc.got != tc.want {
			t.Fatalf("invalid %s: got=%q, want=%q", tc.name, tc.got, tc.want)
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	date := time.Date(2022, time.March, 1, 12, 0, 0, 0, time.UTC)
	valid := makeFRU(t, date, "Antmicro")

	for _, tc := range []struct {
		name string
		raw  func() []byte
		want string
	}{
		{
			name: "short",
			raw:  func() []byte { return valid[:4] },
			want: "fru: common header too short: 4",
		},
		{
			name: "bad-version",
			raw: func() []byte {
				raw := append([]byte{}, valid...)
				raw[0] = 0x02
				return raw
			},
			want: "fru: unknown header format version 0x02",
		},
		{
			name: "bad-header-checksum",
			raw: func() []byte {
				raw := append([]byte{}, valid...)
				raw[7]++
				return raw
			},
			want: "fru: invalid common header checksum",
		},
		{
			name: "bad-board-checksum",
			raw: func() []byte {
				raw := append([]byte{}, valid...)
				raw[len(raw)-1]++
				return raw
			},
			want: "fru: invalid board-info checksum",
		},
		{
			name: "no-board-area",
			raw: func() []byte {
				hdr := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
				return append(hdr, checksum(hdr))
			},
			want: "fru: no board-info area",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.raw())
			if err == nil {
				t.Fatalf("expected an error (%s)", tc.want)
			}
			if got, want := err.Error(), tc.want; got != want {
				t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
			}
		})
	}
}

func TestDecode6Bit(t *testing.T) {
	for _, tc := range []struct {
		raw  []byte
		want string
	}{
		{[]byte{0x29, 0xdc, 0xa6}, "IPMI"},
		{nil, ""},
	} {
		if got := decode6bit(tc.raw); got != tc.want {
			t.Fatalf("invalid 6-bit decode: got=%q, want=%q", got, tc.want)
		}
	}
}

func TestDecode6BitField(t *testing.T) {
	// 6-bit ASCII type/length field for "IPMI".
	raw := []byte{0x80 | 0x03, 0x29, 0xdc, 0xa6, 0xc1}
	v, n, err := decodeField(raw)
	if err != nil {
		t.Fatalf("could not decode field: %+v", err)
	}
	if got, want := v, "IPMI"; got != want {
		t.Fatalf("invalid value: got=%q, want=%q", got, want)
	}
	if got, want := n, 4; got != want {
		t.Fatalf("invalid length: got=%d, want=%d", got, want)
	}
}
