// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"encoding/binary"
	"io"
)

// Decode reads a complete hunk stream from r. On success the returned [Sequence]
// starts with HUNK_HEADER (executables) or HUNK_UNIT (object files) and ends with
// HUNK_END. On failure no partial sequence is returned; the error is an [*Error].
//
// Decode consumes exactly the bytes of the stream and does not read ahead. If cfg
// is nil, the default configuration is used.
func Decode(r io.Reader, cfg *Config) (Sequence, error) {
	hr := NewReader(r, cfg)
	var seq Sequence
	for {
		h, err := hr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		seq = append(seq, h)
	}
	return seq, nil
}

// IsHunk checks if header starts with a HUNK_HEADER or HUNK_UNIT word. Memory
// flags in the top bits of the word are ignored, as they are by [Decode].
func IsHunk(header []byte) bool {
	if len(header) < 4 {
		return false
	}
	id := ID(binary.BigEndian.Uint32(header) & typeMask)
	return id == IDHeader || id == IDUnit
}
