// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk_test

import (
	"testing"

	hunk "github.com/hashicorp/go-hunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pfs3Tag = "$VER: Professional-File-System-III 19.2 PFS3AIO-VERSION (2.10.2018) written by Michiel Pelt and copyright (c) 1994-2012 Peltin BV"

func TestParseVersion(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		expect hunk.VersionInfo
	}{
		{
			name:   "pfs3",
			input:  pfs3Tag,
			expect: hunk.VersionInfo{Name: "Professional-File-System-III", Version: 19, Revision: 2, Day: 2, Month: 10, Year: 2018},
		},
		{
			name:   "minimal",
			input:  "$VER: foo 1.2 (3.4.1995)",
			expect: hunk.VersionInfo{Name: "foo", Version: 1, Revision: 2, Day: 3, Month: 4, Year: 1995},
		},
		{
			name:   "tabs as separators",
			input:  "$VER:\tfoo\t40.1\t(12.5.1993)",
			expect: hunk.VersionInfo{Name: "foo", Version: 40, Revision: 1, Day: 12, Month: 5, Year: 1993},
		},
		{
			name:   "two digit year",
			input:  "$VER: ed 2.15 (28.7.92)",
			expect: hunk.VersionInfo{Name: "ed", Version: 2, Revision: 15, Day: 28, Month: 7, Year: 92},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := hunk.ParseVersion(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestParseVersionMalformed(t *testing.T) {
	cases := []string{
		"",
		"$VER:",
		"foo 1.2 (3.4.1995)",
		"$VER: foo",
		"$VER: foo 1 (3.4.1995)",
		"$VER: foo 1.x (3.4.1995)",
		"$VER: foo 1.2",
		"$VER: foo 1.2 (3.4)",
		"$VER: foo 1.2 (3.4.1995",
		"$VER: foo -1.2 (3.4.1995)",
		"$VER: foo 1.2 (a.b.c)",
		"$VER: foo 99999999999999999999.2 (3.4.1995)",
		"$VER: foo 1.2 (3.4.1995)trailing",
	}
	for _, input := range cases {
		_, err := hunk.ParseVersion(input)
		assert.ErrorIs(t, err, hunk.ErrMalformedVersionString, "input %q", input)
	}
}

func TestParseVersionIsPure(t *testing.T) {
	first, err := hunk.ParseVersion(pfs3Tag)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := hunk.ParseVersion(pfs3Tag)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	_, first2 := hunk.ParseVersion("$VER: broken")
	_, again2 := hunk.ParseVersion("$VER: broken")
	assert.Equal(t, hunk.KindOf(first2), hunk.KindOf(again2))
}

func TestVersionInfoString(t *testing.T) {
	v := hunk.VersionInfo{Name: "foo", Version: 1, Revision: 2, Day: 3, Month: 4, Year: 1995}
	assert.Equal(t, "$VER: foo 1.2 (3.4.1995)", v.String())

	parsed, err := hunk.ParseVersion(v.String())
	require.NoError(t, err)
	assert.Equal(t, v, parsed)
}
