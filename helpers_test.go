// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk_test

import (
	"bytes"
	"encoding/binary"
)

// builder assembles big-endian hunk streams for tests
type builder struct {
	buf bytes.Buffer
}

func (b *builder) word(ws ...uint32) *builder {
	for _, w := range ws {
		_ = binary.Write(&b.buf, binary.BigEndian, w)
	}
	return b
}

func (b *builder) half(hs ...uint16) *builder {
	for _, h := range hs {
		_ = binary.Write(&b.buf, binary.BigEndian, h)
	}
	return b
}

func (b *builder) raw(p []byte) *builder {
	b.buf.Write(p)
	return b
}

// name writes s as a length-prefixed, NUL padded string. If typ is non-zero
// it is stored in the top byte of the length word, as HUNK_EXT does.
func (b *builder) name(typ uint8, s string) *builder {
	words := (len(s) + 3) / 4
	b.word(uint32(typ)<<24 | uint32(words))
	padded := make([]byte, words*4)
	copy(padded, s)
	return b.raw(padded)
}

func (b *builder) bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}

// minimalCode is the payload of the code segment of minimalExecutable
var minimalCode = []byte{0x4E, 0x71, 0x4E, 0x75, 0x00, 0x00, 0x00, 0x00}

// minimalExecutable is HEADER, CODE, RELOC32, END with one code segment of
// two words and one relocation at offset 4.
func minimalExecutable() []byte {
	b := &builder{}
	b.word(0x3F3, 0, 1, 0, 0, 2)
	b.word(0x3E9, 2).raw(minimalCode)
	b.word(0x3EC, 1, 0, 4, 0)
	b.word(0x3F2)
	return b.bytes()
}

// executableWithData builds a single segment executable whose data segment
// holds payload, which must be a multiple of four bytes long.
func executableWithData(payload []byte) []byte {
	words := uint32(len(payload) / 4)
	b := &builder{}
	b.word(0x3F3, 0, 1, 0, 0, words)
	b.word(0x3EA, words).raw(payload)
	b.word(0x3F2)
	return b.bytes()
}

// pad appends NUL bytes to p up to the next multiple of four.
func pad(p []byte) []byte {
	for len(p)%4 != 0 {
		p = append(p, 0)
	}
	return p
}

// pngHeader starts every PNG file
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
