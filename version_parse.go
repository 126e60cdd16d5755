// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"fmt"
	"regexp"
	"strconv"
)

// VersionInfo is the parsed content of a version tag.
type VersionInfo struct {
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Revision int    `json:"revision"`
	Day      int    `json:"day"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
}

// String renders v in the canonical tag form, e.g. "$VER: name 1.2 (3.4.1995)".
func (v VersionInfo) String() string {
	return fmt.Sprintf("%s %s %d.%d (%d.%d.%d)", versionMarker, v.Name, v.Version, v.Revision, v.Day, v.Month, v.Year)
}

// versionGrammar matches "$VER: name version.revision [words] (day.month.year) [anything]".
// Words between the version and the date must not contain a parenthesis, so the
// date is always the first parenthesized group.
var versionGrammar = regexp.MustCompile(`^\$VER:\s+(\S+)\s+(\d+)\.(\d+)(?:\s+[^\s(]+)*\s+\((\d+)\.(\d+)\.(\d+)\)(?:\s.*)?$`)

// ParseVersion parses the text of a version tag. The text must consist of the
// "$VER:" marker, a name, a version.revision pair and a parenthesized
// day.month.year date, separated by whitespace. Text after the date is ignored.
// A text that does not match is reported as [KindMalformedVersionString].
func ParseVersion(text string) (VersionInfo, error) {
	m := versionGrammar.FindStringSubmatch(text)
	if m == nil {
		return VersionInfo{}, newError(KindMalformedVersionString, nil, "%q", text)
	}

	var nums [5]int
	for i := range nums {
		n, err := strconv.Atoi(m[i+2])
		if err != nil {
			return VersionInfo{}, newError(KindMalformedVersionString, err, "%q", text)
		}
		nums[i] = n
	}

	return VersionInfo{
		Name:     m[1],
		Version:  nums[0],
		Revision: nums[1],
		Day:      nums[2],
		Month:    nums[3],
		Year:     nums[4],
	}, nil
}
