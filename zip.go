// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"archive/zip"
	"io"
)

// fileExtensionZip is the file extension for zip files.
const fileExtensionZip = "zip"

// magicBytesZip contains the magic bytes for a zip archive.
var magicBytesZip = [][]byte{
	{0x50, 0x4B, 0x03, 0x04},
}

// walkZip buffers src, since the zip central directory sits at the end of
// the archive.
func walkZip(src io.Reader) (archiveWalker, error) {
	ra, err := bufferAll(src)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(ra, ra.Size())
	if err != nil {
		return nil, err
	}
	return &zipWalker{zr: zr}, nil
}

type zipWalker struct {
	zr *zip.Reader
	fp int
}

func (z *zipWalker) Type() string {
	return fileExtensionZip
}

func (z *zipWalker) Next() (archiveEntry, error) {
	if z.fp >= len(z.zr.File) {
		return nil, io.EOF
	}
	f := z.zr.File[z.fp]
	z.fp++
	return &zipEntry{f}, nil
}

type zipEntry struct {
	f *zip.File
}

func (z *zipEntry) Name() string {
	return z.f.Name
}

func (z *zipEntry) Size() int64 {
	return int64(z.f.UncompressedSize64)
}

func (z *zipEntry) IsRegular() bool {
	return z.f.Mode().IsRegular()
}

func (z *zipEntry) Open() (io.ReadCloser, error) {
	return z.f.Open()
}
