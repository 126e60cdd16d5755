// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// versionMarker starts every version tag.
const versionMarker = "$VER:"

// markerPattern is the marker preceded by the NUL byte that terminates whatever
// data precedes the tag. Requiring the NUL avoids matches inside unrelated text.
var markerPattern = []byte("\x00" + versionMarker)

// ScanVersion searches data for the first embedded version tag and returns its
// text, starting with the "$VER:" marker and ending before the first NUL, line
// terminator or other non printable byte. The text is decoded from ISO-8859-1,
// the Amiga character set. ScanVersion reports false if data holds no tag.
func ScanVersion(data []byte) (string, bool) {
	i := bytes.Index(data, markerPattern)
	if i < 0 {
		return "", false
	}
	return versionText(data, i+1), true
}

// ScanHunks searches the CODE and DATA payloads of seq for a version tag.
// The start of a payload counts as a NUL boundary, so a tag placed at offset
// zero of a segment is found as well.
func ScanHunks(seq Sequence) (string, bool) {
	for _, h := range seq {
		if h.ID != IDCode && h.ID != IDData {
			continue
		}
		if bytes.HasPrefix(h.Payload, markerPattern[1:]) {
			return versionText(h.Payload, 0), true
		}
		if text, ok := ScanVersion(h.Payload); ok {
			return text, true
		}
	}
	return "", false
}

// versionText returns the tag text of data starting at the marker at start.
func versionText(data []byte, start int) string {
	end := start + len(versionMarker)
	for end < len(data) && isPrintable(data[end]) {
		end++
	}

	// ISO-8859-1 maps every byte, decoding cannot fail
	text, _ := charmap.ISO8859_1.NewDecoder().Bytes(data[start:end])
	return string(text)
}

// isPrintable reports whether b is printable in ISO-8859-1. Tabs are allowed,
// as some tags separate their fields with them.
func isPrintable(b byte) bool {
	return b == '\t' || (b >= 0x20 && b < 0x7F) || b >= 0xA0
}
