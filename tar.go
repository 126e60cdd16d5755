// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"archive/tar"
	"io"
)

// fileExtensionTar is the file extension for tar files
const fileExtensionTar = "tar"

// offsetTar is the offset where the magic bytes are located in the file
const offsetTar = 257

// magicBytesTar are the magic bytes for tar files
var magicBytesTar = [][]byte{
	[]byte("ustar\x00tar\x00"),
	[]byte("ustar\x00"),
	[]byte("ustar  \x00"),
}

func walkTar(src io.Reader) (archiveWalker, error) {
	return &tarWalker{tr: tar.NewReader(src)}, nil
}

// tarWalker streams the members of a tar archive
type tarWalker struct {
	tr *tar.Reader
}

func (t *tarWalker) Type() string {
	return fileExtensionTar
}

func (t *tarWalker) Next() (archiveEntry, error) {
	hdr, err := t.tr.Next()
	if err != nil {
		return nil, err
	}
	return &tarEntry{hdr: hdr, tr: t.tr}, nil
}

type tarEntry struct {
	hdr *tar.Header
	tr  *tar.Reader
}

func (t *tarEntry) Name() string {
	return t.hdr.Name
}

func (t *tarEntry) Size() int64 {
	return t.hdr.Size
}

func (t *tarEntry) IsRegular() bool {
	return t.hdr.Typeflag == tar.TypeReg
}

// Open returns the content of the current member. It is only valid until the
// walker advances.
func (t *tarEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(t.tr), nil
}
