// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
)

// maxNameWords bounds the length field of names. EXT entries store the length
// in 24 bits, so no valid name can be longer.
const maxNameWords = 0xFFFFFF

// Reader decodes a hunk stream one hunk at a time. Each call to [Reader.Next]
// consumes exactly the bytes of one hunk, so a consumer may stop early and the
// source is positioned right behind the last returned hunk.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src *limitErrorReader
	cfg *Config
	buf [4]byte

	err     error // sticky error, io.EOF after the stream ended
	started bool
	done    bool
	hunks   int64
	last    ID

	unit      bool    // object file, started with HUNK_UNIT
	header    *Header // segment table of an executable
	remaining int     // segments of an executable not yet closed by HUNK_END
	inSegment bool    // a segment was opened and not yet closed
	name      string  // pending HUNK_NAME for the next segment
}

// NewReader returns a [Reader] decoding the hunk stream in r. If cfg is nil,
// the default configuration is used.
func NewReader(r io.Reader, cfg *Config) *Reader {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Reader{
		src: newLimitErrorReader(r, cfg.MaxInputSize()),
		cfg: cfg,
	}
}

// Offset returns the number of bytes consumed from the source.
func (r *Reader) Offset() int64 {
	return r.src.ReadBytes()
}

// Next returns the next hunk of the stream. It returns io.EOF after the hunk
// that terminates the stream. Any other error is an [*Error] and is returned
// again by all following calls.
func (r *Reader) Next() (*Hunk, error) {
	if r.err != nil {
		return nil, r.err
	}
	h, err := r.next()
	if err != nil {
		r.err = err
		return nil, err
	}
	return h, nil
}

func (r *Reader) next() (*Hunk, error) {
	if r.done {
		return nil, io.EOF
	}

	start := r.Offset()
	code, err := r.readWord()
	if !r.started {
		if err != nil {
			if isEOF(err) {
				return nil, newError(KindNotAHunkStream, nil, "input shorter than one word")
			}
			return nil, ioError(err, "reading first identifier")
		}
		id, ok := LookupID(code & typeMask)
		if !ok {
			return nil, newError(KindNotAHunkStream, nil, "unknown identifier 0x%08X at offset 0", code)
		}
		if id != IDHeader && id != IDUnit {
			return nil, newError(KindNotAHunkStream, nil, "stream starts with %s", id)
		}
		r.started = true
		r.unit = id == IDUnit
		return r.decode(id, code&^typeMask, start)
	}

	if err != nil {
		// object files simply end after the last unit
		if err == io.EOF && r.unit && r.last == IDEnd {
			r.done = true
			return nil, io.EOF
		}
		return nil, r.wrap(err, "reading identifier at offset %d", start)
	}
	id, ok := LookupID(code & typeMask)
	if !ok {
		return nil, newError(KindUnsupportedHunkKind, nil, "unknown identifier 0x%08X at offset %d", code, start)
	}
	return r.decode(id, code&^typeMask, start)
}

// decode reads the body of a hunk whose identifier was just consumed.
func (r *Reader) decode(id ID, flags uint32, start int64) (*Hunk, error) {
	r.hunks++
	if err := r.cfg.CheckMaxHunks(r.hunks); err != nil {
		return nil, err
	}

	h := &Hunk{ID: id, MemFlags: flags}
	var err error
	switch id {
	case IDHeader:
		if r.hunks > 1 {
			return nil, newError(KindMalformedHunk, nil, "%s at offset %d", id, start)
		}
		err = r.readHeader(h)
	case IDUnit:
		if !r.unit || r.inSegment {
			return nil, newError(KindMalformedHunk, nil, "%s at offset %d", id, start)
		}
		h.Name, err = r.readName()
	case IDName:
		h.Name, err = r.readName()
		r.name = h.Name
	case IDCode, IDData, IDBss:
		err = r.readSegment(h)
	case IDReloc32Short:
		err = r.readRelocs(h, true)
	case IDExt:
		err = r.readExternals(h)
	case IDSymbol:
		err = r.readSymbols(h)
	case IDDebug:
		err = r.readDebug(h)
	case IDEnd:
		err = r.closeSegment(start)
	default:
		if !id.isLongReloc() {
			return nil, newError(KindUnsupportedHunkKind, nil, "%s at offset %d", id, start)
		}
		// LoadSeg treats HUNK_DREL32 in executables as HUNK_RELOC32SHORT
		err = r.readRelocs(h, id == IDDRel32 && !r.unit)
	}
	if err != nil {
		return nil, err
	}

	r.last = id
	r.cfg.Logger().Debug("decoded hunk", "id", id.String(), "size", h.Size, "offset", start)
	return h, nil
}

// readHeader reads the segment table of an executable.
func (r *Reader) readHeader(h *Hunk) error {
	hdr := &Header{}
	for {
		n, err := r.word("resident library name")
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		name, err := r.readString(n)
		if err != nil {
			return err
		}
		hdr.ResidentLibraries = append(hdr.ResidentLibraries, name)
	}

	var err error
	if hdr.TableSize, err = r.word("header table size"); err != nil {
		return err
	}
	if hdr.First, err = r.word("header first slot"); err != nil {
		return err
	}
	if hdr.Last, err = r.word("header last slot"); err != nil {
		return err
	}
	if hdr.First > hdr.Last || hdr.Last >= hdr.TableSize {
		return newError(KindMalformedHunk, nil, "header slots %d..%d do not fit table of %d", hdr.First, hdr.Last, hdr.TableSize)
	}
	count := int64(hdr.Last) - int64(hdr.First) + 1
	if err := r.cfg.CheckMaxHunks(count); err != nil {
		return err
	}

	hdr.Sizes = make([]uint32, 0, min(count, 1024))
	hdr.MemFlags = make([]uint32, 0, min(count, 1024))
	for i := int64(0); i < count; i++ {
		w, err := r.word("header segment size")
		if err != nil {
			return err
		}
		flags := w &^ sizeMask
		if flags == MemFlagChip|MemFlagFast {
			if flags, err = r.word("header segment memory flags"); err != nil {
				return err
			}
		}
		size := w & sizeMask
		if err := r.cfg.CheckHunkSize(int64(size) * 4); err != nil {
			return err
		}
		hdr.Sizes = append(hdr.Sizes, size)
		hdr.MemFlags = append(hdr.MemFlags, flags)
	}

	h.Header = hdr
	r.header = hdr
	r.remaining = int(count)
	return nil
}

// readSegment reads a CODE, DATA or BSS hunk.
func (r *Reader) readSegment(h *Hunk) error {
	if r.inSegment {
		return newError(KindMalformedHunk, nil, "%s inside a segment not closed by %s", h.ID, IDEnd)
	}
	if !r.unit && r.remaining == 0 {
		return newError(KindMalformedHunk, nil, "%s beyond the %d declared segments", h.ID, len(r.header.Sizes))
	}

	w, err := r.word(h.ID.String() + " size")
	if err != nil {
		return err
	}
	h.Size = w & sizeMask
	if !r.unit {
		index := len(r.header.Sizes) - r.remaining
		if declared := r.header.Sizes[index]; h.Size > declared {
			return newError(KindMalformedHunk, nil, "%s of %d words exceeds declared size of %d words", h.ID, h.Size, declared)
		}
	}

	if h.ID == IDBss {
		if err := r.cfg.CheckHunkSize(int64(h.Size) * 4); err != nil {
			return err
		}
		h.Payload = make([]byte, int(h.Size)*4)
	} else if h.Payload, err = r.readPayload(h.Size, h.ID.String()); err != nil {
		return err
	}

	h.Name = r.name
	r.name = ""
	r.inSegment = true
	return nil
}

// closeSegment handles HUNK_END. An executable ends after its last declared segment.
func (r *Reader) closeSegment(start int64) error {
	if !r.inSegment {
		return newError(KindMalformedHunk, nil, "%s without segment at offset %d", IDEnd, start)
	}
	r.inSegment = false
	if !r.unit {
		r.remaining--
		if r.remaining == 0 {
			r.done = true
		}
	}
	return nil
}

// readRelocs reads a relocation table. The short form uses 16-bit words and is
// padded to a 32-bit boundary.
func (r *Reader) readRelocs(h *Hunk, short bool) error {
	if !r.inSegment {
		return newError(KindMalformedHunk, nil, "%s outside of a segment", h.ID)
	}
	read := r.word
	if short {
		read = r.half
	}

	var halves int
	for {
		n, err := read(h.ID.String() + " count")
		if err != nil {
			return err
		}
		halves++
		if n == 0 {
			break
		}
		target, err := read(h.ID.String() + " target")
		if err != nil {
			return err
		}
		halves++
		if r.header != nil && target >= r.header.TableSize {
			return newError(KindMalformedHunk, nil, "%s refers to segment %d of %d", h.ID, target, r.header.TableSize)
		}
		offsets := make([]uint32, 0, min(n, 1024))
		for i := uint32(0); i < n; i++ {
			off, err := read(h.ID.String() + " offset")
			if err != nil {
				return err
			}
			offsets = append(offsets, off)
		}
		halves += int(n)
		h.Relocs = append(h.Relocs, Relocation{Target: target, Offsets: offsets})
	}

	if short && halves%2 == 1 {
		if _, err := r.half(h.ID.String() + " padding"); err != nil {
			return err
		}
	}
	return nil
}

// readExternals reads the definitions and references of a HUNK_EXT.
func (r *Reader) readExternals(h *Hunk) error {
	if !r.inSegment {
		return newError(KindMalformedHunk, nil, "%s outside of a segment", h.ID)
	}
	for {
		w, err := r.word("external type")
		if err != nil {
			return err
		}
		if w == 0 {
			return nil
		}
		ext := External{Type: ExtType(w >> 24)}
		if ext.Name, err = r.readString(w & 0xFFFFFF); err != nil {
			return err
		}

		switch ext.Type {
		case ExtSymb, ExtDef, ExtAbs, ExtRes:
			if ext.Value, err = r.word("external value"); err != nil {
				return err
			}
		case ExtCommon, ExtRelCommon:
			if ext.Size, err = r.word("common size"); err != nil {
				return err
			}
			if ext.Offsets, err = r.readOffsets(); err != nil {
				return err
			}
		case ExtRef32, ExtRef16, ExtRef8, ExtDExt32, ExtDExt16, ExtDExt8, ExtRelRef32, ExtRelRef26, ExtAbsRef16, ExtAbsRef8:
			if ext.Offsets, err = r.readOffsets(); err != nil {
				return err
			}
		default:
			return newError(KindUnsupportedHunkKind, nil, "external %q of type %d", ext.Name, ext.Type)
		}
		h.Externals = append(h.Externals, ext)
	}
}

// readOffsets reads a counted list of offsets.
func (r *Reader) readOffsets() ([]uint32, error) {
	n, err := r.word("reference count")
	if err != nil {
		return nil, err
	}
	offsets := make([]uint32, 0, min(n, 1024))
	for i := uint32(0); i < n; i++ {
		off, err := r.word("reference offset")
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, off)
	}
	return offsets, nil
}

// readSymbols reads a HUNK_SYMBOL.
func (r *Reader) readSymbols(h *Hunk) error {
	if !r.inSegment {
		return newError(KindMalformedHunk, nil, "%s outside of a segment", h.ID)
	}
	for {
		n, err := r.word("symbol name length")
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		var sym Symbol
		if sym.Name, err = r.readString(n); err != nil {
			return err
		}
		if sym.Value, err = r.word("symbol value"); err != nil {
			return err
		}
		h.Symbols = append(h.Symbols, sym)
	}
}

// readDebug reads a HUNK_DEBUG, which is kept as opaque payload.
func (r *Reader) readDebug(h *Hunk) error {
	var err error
	if h.Size, err = r.word("debug size"); err != nil {
		return err
	}
	h.Payload, err = r.readPayload(h.Size, h.ID.String())
	return err
}

// readName reads a length-prefixed name as used by HUNK_UNIT and HUNK_NAME.
func (r *Reader) readName() (string, error) {
	n, err := r.word("name length")
	if err != nil {
		return "", err
	}
	return r.readString(n)
}

// readString reads n words of NUL padded text.
func (r *Reader) readString(n uint32) (string, error) {
	if n > maxNameWords {
		return "", newError(KindMalformedHunk, nil, "name of %d words", n)
	}
	b, err := r.readPayload(n, "name")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

// readPayload reads exactly n words. The buffer grows with the data actually
// read, so a size field larger than the input does not allocate up front.
func (r *Reader) readPayload(n uint32, what string) ([]byte, error) {
	size := int64(n) * 4
	if err := r.cfg.CheckHunkSize(size); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(int(min(size, 64*1024)))
	if _, err := io.CopyN(&buf, r.src, size); err != nil {
		return nil, r.wrap(err, "%s of %d bytes, got %d", what, size, buf.Len())
	}
	return buf.Bytes(), nil
}

// word reads one big-endian 32-bit word that must be present.
func (r *Reader) word(what string) (uint32, error) {
	w, err := r.readWord()
	if err != nil {
		return 0, r.wrap(err, "reading %s", what)
	}
	return w, nil
}

// half reads one big-endian 16-bit word that must be present.
func (r *Reader) half(what string) (uint32, error) {
	if _, err := io.ReadFull(r.src, r.buf[:2]); err != nil {
		return 0, r.wrap(err, "reading %s", what)
	}
	return uint32(binary.BigEndian.Uint16(r.buf[:2])), nil
}

func (r *Reader) readWord() (uint32, error) {
	if _, err := io.ReadFull(r.src, r.buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.buf[:]), nil
}

// wrap classifies a read error: end of input inside a hunk is a truncation,
// errors that are already classified pass through, anything else is an i/o failure.
func (r *Reader) wrap(err error, format string, args ...interface{}) error {
	if KindOf(err) != 0 {
		return err
	}
	if isEOF(err) {
		return newError(KindTruncatedHunk, nil, format, args...)
	}
	return ioError(err, format, args...)
}

func ioError(err error, format string, args ...interface{}) error {
	if KindOf(err) != 0 {
		return err
	}
	return newError(KindIOFailure, err, format, args...)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
