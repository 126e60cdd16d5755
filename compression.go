// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// decompressionFunc returns a reader with the decompressed content of src.
type decompressionFunc func(src io.Reader) (io.Reader, error)

// compression describes a compressed container an input file can be wrapped in.
// This is transport compression of the file as a whole, the hunk stream inside
// is decoded as usual.
type compression struct {
	Extension  string
	MagicBytes [][]byte
	Decompress decompressionFunc
}

// compressions is the list of supported compressions. Brotli has no magic bytes
// and is only detected by its file extension.
// references: https://en.wikipedia.org/wiki/List_of_file_signatures
var compressions = []compression{
	{
		Extension:  "gz",
		MagicBytes: [][]byte{{0x1f, 0x8b}},
		Decompress: func(src io.Reader) (io.Reader, error) { return gzip.NewReader(src) },
	},
	{
		Extension:  "bz2",
		MagicBytes: [][]byte{[]byte("BZh1"), []byte("BZh2"), []byte("BZh3"), []byte("BZh4"), []byte("BZh5"), []byte("BZh6"), []byte("BZh7"), []byte("BZh8"), []byte("BZh9")},
		Decompress: func(src io.Reader) (io.Reader, error) { return bzip2.NewReader(src), nil },
	},
	{
		Extension:  "xz",
		MagicBytes: [][]byte{{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},
		Decompress: func(src io.Reader) (io.Reader, error) { return xz.NewReader(src) },
	},
	{
		Extension:  "zst",
		MagicBytes: [][]byte{{0x28, 0xb5, 0x2f, 0xfd}},
		Decompress: func(src io.Reader) (io.Reader, error) {
			d, err := zstd.NewReader(src)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
	},
	{
		Extension:  "lz4",
		MagicBytes: [][]byte{{0x04, 0x22, 0x4D, 0x18}},
		Decompress: func(src io.Reader) (io.Reader, error) { return lz4.NewReader(src), nil },
	},
	{
		Extension:  "sz",
		MagicBytes: [][]byte{append([]byte{0xff, 0x06, 0x00, 0x00}, []byte("sNaPpY")...)},
		Decompress: func(src io.Reader) (io.Reader, error) { return snappy.NewReader(src), nil },
	},
	{
		Extension:  "zz",
		MagicBytes: [][]byte{{0x78, 0x01}, {0x78, 0x5e}, {0x78, 0x9c}, {0x78, 0xda}},
		Decompress: func(src io.Reader) (io.Reader, error) { return zlib.NewReader(src) },
	},
	{
		Extension:  "br",
		Decompress: func(src io.Reader) (io.Reader, error) { return brotli.NewReader(src), nil },
	},
}

// detectCompression returns the compression matching header, or for
// formats without magic bytes the extension of name.
func detectCompression(header []byte, name string) (compression, bool) {
	for _, c := range compressions {
		if len(c.MagicBytes) > 0 && matchesMagicBytes(header, 0, c.MagicBytes) {
			return c, true
		}
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, c := range compressions {
		if len(c.MagicBytes) == 0 && c.Extension == ext {
			return c, true
		}
	}
	return compression{}, false
}

// matchesMagicBytes checks if data contains one of magicBytes at offset.
func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	// check all possible magic bytes until match is found
	for _, mb := range magicBytes {
		// check if header is long enough
		if offset+len(mb) > len(data) {
			continue
		}

		// check for byte match
		if bytes.Equal(mb, data[offset:offset+len(mb)]) {
			return true
		}
	}

	// no match found
	return false
}
