// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"io"

	"github.com/nwaples/rardecode"
)

// fileExtensionRar is the file extension for rar files.
const fileExtensionRar = "rar"

// magicBytesRar are the magic bytes for rar files.
var magicBytesRar = [][]byte{
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00},       // rar 1.5
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, // rar 5.0
}

// walkRar streams a rar archive. Encrypted archives are not supported.
func walkRar(src io.Reader) (archiveWalker, error) {
	r, err := rardecode.NewReader(src, "")
	if err != nil {
		return nil, err
	}
	return &rarWalker{r}, nil
}

type rarWalker struct {
	r *rardecode.Reader
}

func (rw *rarWalker) Type() string {
	return fileExtensionRar
}

func (rw *rarWalker) Next() (archiveEntry, error) {
	fh, err := rw.r.Next()
	if err != nil {
		return nil, err
	}
	return &rarEntry{fh, rw.r}, nil
}

type rarEntry struct {
	f *rardecode.FileHeader
	r io.Reader
}

func (r *rarEntry) Name() string {
	return r.f.Name
}

func (r *rarEntry) Size() int64 {
	return r.f.UnPackedSize
}

func (r *rarEntry) IsRegular() bool {
	return !r.f.IsDir && r.f.Mode().IsRegular()
}

// Open returns the content of the current member. It is only valid until the
// walker advances.
func (r *rarEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(r.r), nil
}
