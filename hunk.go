// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"fmt"
	"strings"
)

// Memory attribute flags carried in the upper bits of a hunk type word or of a
// header size entry.
const (
	MemFlagAdvisory uint32 = 1 << 29 // hunk may be skipped by loaders that don't know it
	MemFlagChip     uint32 = 1 << 30 // load into chip memory
	MemFlagFast     uint32 = 1 << 31 // load into fast memory

	typeMask = 0x1FFFFFFF
	sizeMask = 0x3FFFFFFF
)

// Hunk is one decoded segment of a hunk stream.
type Hunk struct {
	// ID is the kind of the hunk.
	ID ID

	// Name is the name of the hunk, taken from a preceding HUNK_NAME for segments,
	// the unit name for HUNK_UNIT and the name itself for HUNK_NAME.
	Name string

	// Size is the size of the payload in 32-bit words.
	Size uint32

	// Payload is the raw content, always exactly Size*4 bytes long. It is the
	// zero-filled memory image for HUNK_BSS.
	Payload []byte

	// MemFlags holds the memory attribute bits of the type word.
	MemFlags uint32

	// Relocs holds the relocation groups of relocation hunks in stream order.
	Relocs []Relocation

	// Header holds the segment table of a HUNK_HEADER.
	Header *Header

	// Symbols holds the entries of a HUNK_SYMBOL.
	Symbols []Symbol

	// Externals holds the entries of a HUNK_EXT.
	Externals []External
}

// String returns a short summary of the hunk.
func (h *Hunk) String() string {
	var b strings.Builder
	b.WriteString(h.ID.String())
	if h.Name != "" {
		fmt.Fprintf(&b, " %q", h.Name)
	}
	switch {
	case h.ID.isSegment(), h.ID == IDDebug:
		fmt.Fprintf(&b, " size=%d", len(h.Payload))
	case h.Header != nil:
		fmt.Fprintf(&b, " segments=%d", len(h.Header.Sizes))
	case len(h.Relocs) > 0:
		fmt.Fprintf(&b, " targets=%d offsets=%d", len(h.Relocs), h.RelocCount())
	case len(h.Symbols) > 0:
		fmt.Fprintf(&b, " symbols=%d", len(h.Symbols))
	case len(h.Externals) > 0:
		fmt.Fprintf(&b, " externals=%d", len(h.Externals))
	}
	return b.String()
}

// RelocCount returns the number of relocation offsets over all targets.
func (h *Hunk) RelocCount() int {
	var n int
	for _, r := range h.Relocs {
		n += len(r.Offsets)
	}
	return n
}

// RelocsFor returns all offsets that refer to the segment with index target,
// in stream order.
func (h *Hunk) RelocsFor(target uint32) []uint32 {
	var offsets []uint32
	for _, r := range h.Relocs {
		if r.Target == target {
			offsets = append(offsets, r.Offsets...)
		}
	}
	return offsets
}

// Relocation is one group of a relocation table: the byte offsets within the
// current segment that refer to segment Target.
type Relocation struct {
	Target  uint32
	Offsets []uint32
}

// Header is the segment table of an executable.
type Header struct {
	// ResidentLibraries lists the resident library names. Always empty in files
	// produced by any known linker.
	ResidentLibraries []string

	// TableSize is the number of segment slots.
	TableSize uint32

	// First and Last are the first and the last slot loaded from this file.
	First uint32
	Last  uint32

	// Sizes holds the declared size in 32-bit words of each segment.
	Sizes []uint32

	// MemFlags holds the memory attributes of each segment.
	MemFlags []uint32
}

// Symbol is one entry of a HUNK_SYMBOL.
type Symbol struct {
	Name  string
	Value uint32
}

// ExtType is the type of a HUNK_EXT entry.
type ExtType uint8

// External symbol types.
const (
	ExtSymb      ExtType = 0
	ExtDef       ExtType = 1
	ExtAbs       ExtType = 2
	ExtRes       ExtType = 3
	ExtRef32     ExtType = 129
	ExtCommon    ExtType = 130
	ExtRef16     ExtType = 131
	ExtRef8      ExtType = 132
	ExtDExt32    ExtType = 133
	ExtDExt16    ExtType = 134
	ExtDExt8     ExtType = 135
	ExtRelRef32  ExtType = 136
	ExtRelCommon ExtType = 137
	ExtAbsRef16  ExtType = 138
	ExtAbsRef8   ExtType = 139
	ExtRelRef26  ExtType = 229
)

// External is one entry of a HUNK_EXT: either a definition with a value or a
// reference with the offsets that use it.
type External struct {
	Type    ExtType
	Name    string
	Value   uint32   // definitions
	Size    uint32   // common blocks
	Offsets []uint32 // references
}

// Sequence is the ordered result of decoding one hunk stream.
type Sequence []*Hunk

// IDs returns the kinds of all hunks in order.
func (s Sequence) IDs() []ID {
	ids := make([]ID, len(s))
	for i, h := range s {
		ids[i] = h.ID
	}
	return ids
}

// Segments returns the CODE, DATA and BSS hunks in order.
func (s Sequence) Segments() []*Hunk {
	var segs []*Hunk
	for _, h := range s {
		if h.ID.isSegment() {
			segs = append(segs, h)
		}
	}
	return segs
}

// Validate checks the sequence invariants: the first hunk starts a stream, the
// last one is HUNK_END and each payload matches its size.
func (s Sequence) Validate() error {
	if len(s) == 0 {
		return nil
	}
	if first := s[0].ID; first != IDHeader && first != IDUnit {
		return newError(KindMalformedHunk, nil, "sequence starts with %s", first)
	}
	if last := s[len(s)-1].ID; last != IDEnd {
		return newError(KindMalformedHunk, nil, "sequence ends with %s", last)
	}
	for i, h := range s {
		if uint64(len(h.Payload)) != uint64(h.Size)*4 {
			return newError(KindMalformedHunk, nil, "hunk %d (%s): payload of %d bytes for %d words", i, h.ID, len(h.Payload), h.Size)
		}
	}
	return nil
}
