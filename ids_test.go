// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk_test

import (
	"testing"

	hunk "github.com/hashicorp/go-hunk"
	"github.com/stretchr/testify/assert"
)

func TestLookupID(t *testing.T) {
	cases := []struct {
		code uint32
		name string
		ok   bool
	}{
		{0x3E7, "HUNK_UNIT", true},
		{0x3E9, "HUNK_CODE", true},
		{0x3EB, "HUNK_BSS", true},
		{0x3F2, "HUNK_END", true},
		{0x3F3, "HUNK_HEADER", true},
		{0x3F4, "", false},
		{0x3FC, "HUNK_RELOC32SHORT", true},
		{0x3FE, "HUNK_ABSRELOC16", true},
		{0x3E6, "", false},
		{0x3FF, "", false},
		{0x400003E9, "", false},
	}
	for _, tc := range cases {
		id, ok := hunk.LookupID(tc.code)
		assert.Equal(t, tc.ok, ok, "code 0x%X", tc.code)
		if tc.ok {
			assert.Equal(t, tc.name, id.String())
		}
	}
}

func TestLookupIDCoversCatalog(t *testing.T) {
	var known int
	for code := uint32(0x3E0); code < 0x400; code++ {
		if _, ok := hunk.LookupID(code); ok {
			known++
		}
	}
	assert.Equal(t, 23, known)
}

func TestIDStringUnknown(t *testing.T) {
	assert.Equal(t, "HUNK_UNKNOWN(0x000003F4)", hunk.ID(0x3F4).String())
}
