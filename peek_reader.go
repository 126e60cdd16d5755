// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"bytes"
	"io"
)

// peekReader reads the first bytes of a stream ahead, so that the container or
// archive type can be identified, and replays them to its readers.
type peekReader struct {
	io.Reader
	head []byte
}

// newPeekReader reads up to n bytes from r. A shorter input is not an error,
// the head then holds the whole input.
func newPeekReader(r io.Reader, n int) (*peekReader, error) {
	head := make([]byte, n)
	got, err := io.ReadFull(r, head)
	if err != nil && !isEOF(err) {
		return nil, err
	}
	head = head[:got]
	return &peekReader{Reader: io.MultiReader(bytes.NewReader(head), r), head: head}, nil
}

// Peek returns the bytes read ahead.
func (p *peekReader) Peek() []byte {
	return p.head
}
