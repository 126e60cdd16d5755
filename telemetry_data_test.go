// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk_test

import (
	"fmt"
	"testing"
	"time"

	hunk "github.com/hashicorp/go-hunk"
)

// TestTelemetryDataString tests the String method of the data struct
func TestTelemetryDataString(t *testing.T) {
	m := hunk.TelemetryData{
		DecodeDuration:  time.Duration(5 * time.Millisecond),
		DecodeErrors:    1,
		HunkFiles:       2,
		Hunks:           8,
		InputSize:       2048,
		InputType:       "tar",
		LastDecodeError: fmt.Errorf("example error"),
		PayloadSize:     64,
		SkippedFiles:    1,
		VersionTags:     1,
	}

	expected := `{"last_decode_error":"example error","decode_duration":5000000,"decode_errors":1,"hunk_files":2,"hunks":8,"input_size":2048,"input_type":"tar","payload_size":64,"skipped_files":1,"version_tags":1}`
	if m.String() != expected {
		t.Errorf("Expected '%s', but got '%s'", expected, m.String())
	}
}

// TestTelemetryDataStringNoError checks that a missing error is rendered as empty string
func TestTelemetryDataStringNoError(t *testing.T) {
	m := hunk.TelemetryData{InputType: "hunk"}
	expected := `{"last_decode_error":"","decode_duration":0,"decode_errors":0,"hunk_files":0,"hunks":0,"input_size":0,"input_type":"hunk","payload_size":0,"skipped_files":0,"version_tags":0}`
	if m.String() != expected {
		t.Errorf("Expected '%s', but got '%s'", expected, m.String())
	}
}

func TestTelemetryDataEquals(t *testing.T) {
	a := &hunk.TelemetryData{Hunks: 4, InputType: "gz", DecodeDuration: time.Second}
	b := &hunk.TelemetryData{Hunks: 4, InputType: "gz"}
	c := &hunk.TelemetryData{Hunks: 5, InputType: "gz"}
	var null *hunk.TelemetryData

	cases := []struct {
		name string
		x, y *hunk.TelemetryData
		want bool
	}{
		{"duration is ignored", a, b, true},
		{"different hunks", a, c, false},
		{"both nil", null, null, true},
		{"one nil", a, null, false},
	}
	for _, tc := range cases {
		if got := tc.x.Equals(tc.y); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
