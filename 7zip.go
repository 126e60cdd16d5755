// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"io"

	"github.com/bodgit/sevenzip"
)

// fileExtension7zip is the file extension for 7zip files
const fileExtension7zip = "7z"

// magicBytes7zip are the magic bytes for 7zip files
var magicBytes7zip = [][]byte{
	{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C},
}

func walk7zip(src io.Reader) (archiveWalker, error) {
	ra, err := bufferAll(src)
	if err != nil {
		return nil, err
	}
	r, err := sevenzip.NewReader(ra, ra.Size())
	if err != nil {
		return nil, err
	}
	return &sevenZipWalker{r: r}, nil
}

// sevenZipWalker visits the files of a 7zip archive in directory order
type sevenZipWalker struct {
	r  *sevenzip.Reader
	fp int
}

func (z *sevenZipWalker) Type() string {
	return fileExtension7zip
}

func (z *sevenZipWalker) Next() (archiveEntry, error) {
	if z.fp >= len(z.r.File) {
		return nil, io.EOF
	}
	f := z.r.File[z.fp]
	z.fp++
	return &sevenZipEntry{f}, nil
}

type sevenZipEntry struct {
	f *sevenzip.File
}

func (z *sevenZipEntry) Name() string {
	return z.f.Name
}

func (z *sevenZipEntry) Size() int64 {
	return z.f.FileInfo().Size()
}

// IsRegular reports false for directories. 7zip has no symlinks.
func (z *sevenZipEntry) IsRegular() bool {
	return z.f.FileInfo().Mode().IsRegular()
}

func (z *sevenZipEntry) Open() (io.ReadCloser, error) {
	return z.f.Open()
}
