// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"bytes"
	"io"
)

// archiveWalker iterates over the members of an archive. Next returns io.EOF
// once all members have been visited.
type archiveWalker interface {
	Type() string
	Next() (archiveEntry, error)
}

// archiveEntry is a single member of an archive
type archiveEntry interface {
	Name() string
	Size() int64
	IsRegular() bool
	Open() (io.ReadCloser, error)
}

// archive describes a supported archive format
type archive struct {
	Extension  string
	MagicBytes [][]byte
	Offset     int
	Walk       func(src io.Reader) (archiveWalker, error)
}

// archives lists the archive formats walked by Inspect
var archives = []archive{
	{Extension: fileExtensionTar, MagicBytes: magicBytesTar, Offset: offsetTar, Walk: walkTar},
	{Extension: fileExtensionZip, MagicBytes: magicBytesZip, Walk: walkZip},
	{Extension: fileExtension7zip, MagicBytes: magicBytes7zip, Walk: walk7zip},
	{Extension: fileExtensionRar, MagicBytes: magicBytesRar, Walk: walkRar},
}

// detectArchive returns the archive format whose magic bytes match header.
func detectArchive(header []byte) (archive, bool) {
	for _, a := range archives {
		if matchesMagicBytes(header, a.Offset, a.MagicBytes) {
			return a, true
		}
	}
	return archive{}, false
}

// bufferAll reads src into memory for formats that need random access.
// The size of src is bounded by the limitErrorReader wrapping it.
func bufferAll(src io.Reader) (*bytes.Reader, error) {
	if ra, ok := src.(*bytes.Reader); ok {
		return ra, nil
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
