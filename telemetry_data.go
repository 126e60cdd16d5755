// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData holds all telemetry data of an inspection.
type TelemetryData struct {
	// DecodeDuration is the time it took to inspect the input
	DecodeDuration time.Duration `json:"decode_duration"`

	// DecodeErrors is the number of errors during inspection
	DecodeErrors int64 `json:"decode_errors"`

	// HunkFiles is the number of successfully decoded hunk streams
	HunkFiles int64 `json:"hunk_files"`

	// Hunks is the number of decoded hunk records over all streams
	Hunks int64 `json:"hunks"`

	// InputSize is the size of the input
	InputSize int64 `json:"input_size"`

	// InputType is the detected type of the input, e.g. "hunk", "gz" or "tar.xz"
	InputType string `json:"input_type"`

	// LastDecodeError is the last error during inspection
	LastDecodeError error `json:"last_decode_error"`

	// PayloadSize is the sum of all CODE, DATA and BSS payload sizes
	PayloadSize int64 `json:"payload_size"`

	// SkippedFiles is the number of archive members that are no hunk streams
	// or do not match the configured patterns
	SkippedFiles int64 `json:"skipped_files"`

	// VersionTags is the number of version tags found
	VersionTags int64 `json:"version_tags"`
}

// String returns a string representation of [TelemetryData].
func (m TelemetryData) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (m TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if m.LastDecodeError != nil {
		lastError = m.LastDecodeError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastDecodeError string `json:"last_decode_error"`
		*Alias
	}{
		LastDecodeError: lastError,
		Alias:           (*Alias)(&m),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after an inspection has finished which can be used to submit the [TelemetryData]
// to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)

// Equals returns true if the given [TelemetryData] is equal to the receiver.
// The duration and the last error are not compared.
func (m *TelemetryData) Equals(other *TelemetryData) bool {
	if m == nil && other == nil {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	return m.DecodeErrors == other.DecodeErrors &&
		m.HunkFiles == other.HunkFiles &&
		m.Hunks == other.Hunks &&
		m.InputSize == other.InputSize &&
		m.InputType == other.InputType &&
		m.PayloadSize == other.PayloadSize &&
		m.SkippedFiles == other.SkippedFiles &&
		m.VersionTags == other.VersionTags
}

// captureDecodeDuration captures the duration of the inspection
func captureDecodeDuration(td *TelemetryData, start time.Time) {
	td.DecodeDuration = time.Since(start)
}

// captureInputSize captures the input size of the inspection
func captureInputSize(td *TelemetryData, ler *limitErrorReader) {
	td.InputSize = ler.ReadBytes()
}
