// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import "fmt"

// ID identifies the kind of a hunk. The values are the historical AmigaDOS
// hunk type codes.
type ID uint32

// Hunk type codes as defined by the AmigaDOS object file format.
// reference: The AmigaDOS Manual, 3rd edition, chapter 10 "The Object File Structure"
const (
	IDUnit         ID = 0x3E7
	IDName         ID = 0x3E8
	IDCode         ID = 0x3E9
	IDData         ID = 0x3EA
	IDBss          ID = 0x3EB
	IDReloc32      ID = 0x3EC
	IDReloc16      ID = 0x3ED
	IDReloc8       ID = 0x3EE
	IDExt          ID = 0x3EF
	IDSymbol       ID = 0x3F0
	IDDebug        ID = 0x3F1
	IDEnd          ID = 0x3F2
	IDHeader       ID = 0x3F3
	IDOverlay      ID = 0x3F5
	IDBreak        ID = 0x3F6
	IDDRel32       ID = 0x3F7
	IDDRel16       ID = 0x3F8
	IDDRel8        ID = 0x3F9
	IDLib          ID = 0x3FA
	IDIndex        ID = 0x3FB
	IDReloc32Short ID = 0x3FC
	IDRelReloc32   ID = 0x3FD
	IDAbsReloc16   ID = 0x3FE
)

// catalog maps every known code to its historical name. 0x3F4 was never assigned.
var catalog = map[ID]string{
	IDUnit:         "HUNK_UNIT",
	IDName:         "HUNK_NAME",
	IDCode:         "HUNK_CODE",
	IDData:         "HUNK_DATA",
	IDBss:          "HUNK_BSS",
	IDReloc32:      "HUNK_RELOC32",
	IDReloc16:      "HUNK_RELOC16",
	IDReloc8:       "HUNK_RELOC8",
	IDExt:          "HUNK_EXT",
	IDSymbol:       "HUNK_SYMBOL",
	IDDebug:        "HUNK_DEBUG",
	IDEnd:          "HUNK_END",
	IDHeader:       "HUNK_HEADER",
	IDOverlay:      "HUNK_OVERLAY",
	IDBreak:        "HUNK_BREAK",
	IDDRel32:       "HUNK_DREL32",
	IDDRel16:       "HUNK_DREL16",
	IDDRel8:        "HUNK_DREL8",
	IDLib:          "HUNK_LIB",
	IDIndex:        "HUNK_INDEX",
	IDReloc32Short: "HUNK_RELOC32SHORT",
	IDRelReloc32:   "HUNK_RELRELOC32",
	IDAbsReloc16:   "HUNK_ABSRELOC16",
}

// LookupID returns the hunk kind for code. It reports false for any code that is
// not part of the catalog; it never falls back to a default.
func LookupID(code uint32) (ID, bool) {
	id := ID(code)
	_, ok := catalog[id]
	return id, ok
}

// String returns the historical name, e.g. "HUNK_CODE".
func (id ID) String() string {
	if name, ok := catalog[id]; ok {
		return name
	}
	return fmt.Sprintf("HUNK_UNKNOWN(0x%08X)", uint32(id))
}

// isSegment reports whether id starts a loadable segment.
func (id ID) isSegment() bool {
	return id == IDCode || id == IDData || id == IDBss
}

// isLongReloc reports whether id uses the 32-bit relocation table layout.
func (id ID) isLongReloc() bool {
	switch id {
	case IDReloc32, IDReloc16, IDReloc8, IDDRel32, IDDRel16, IDDRel8, IDRelReloc32, IDAbsReloc16:
		return true
	}
	return false
}
