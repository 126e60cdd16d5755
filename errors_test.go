// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	hunk "github.com/hashicorp/go-hunk"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := &hunk.Error{Kind: hunk.KindTruncatedHunk, Msg: "reading HUNK_CODE size"}
	assert.Equal(t, "truncated hunk: reading HUNK_CODE size", err.Error())

	wrapped := &hunk.Error{Kind: hunk.KindIOFailure, Msg: "reading header", Err: io.ErrClosedPipe}
	assert.Equal(t, "i/o failure: reading header: io: read/write on closed pipe", wrapped.Error())
	assert.ErrorIs(t, wrapped, io.ErrClosedPipe)

	assert.Equal(t, "kind(42)", hunk.Kind(42).String())
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("inspecting foo: %w", &hunk.Error{Kind: hunk.KindMalformedHunk, Msg: "x"})
	assert.ErrorIs(t, err, hunk.ErrMalformedHunk)
	assert.NotErrorIs(t, err, hunk.ErrTruncatedHunk)
	assert.Equal(t, hunk.KindMalformedHunk, hunk.KindOf(err))

	// only bare sentinels match by kind
	other := &hunk.Error{Kind: hunk.KindMalformedHunk, Msg: "y"}
	assert.False(t, errors.Is(err, other))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, hunk.Kind(0), hunk.KindOf(nil))
	assert.Equal(t, hunk.Kind(0), hunk.KindOf(io.EOF))
	assert.Equal(t, hunk.KindLimitExceeded, hunk.KindOf(hunk.ErrLimitExceeded))
}

// failingReader returns err after the first read
type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestDecodeIOFailure(t *testing.T) {
	cause := errors.New("disk on fire")
	cases := []struct {
		name string
		data []byte
	}{
		{name: "first word", data: nil},
		{name: "inside stream", data: minimalExecutable()[:30]},
		{name: "inside payload", data: minimalExecutable()[:34]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := hunk.Decode(&failingReader{data: bytes.Clone(tc.data), err: cause}, nil)
			assert.ErrorIs(t, err, hunk.ErrIOFailure)
			assert.ErrorIs(t, err, cause)
		})
	}
}
