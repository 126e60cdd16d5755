// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all configuration options for decoding and inspection.
// The configuration options can be adjusted using the option pattern style.
//
// The default configuration is designed to be safe on untrusted input and prevent
// memory exhaustion by lying length fields.
type Config struct {
	// continueOnError decides if the inspection of an archive should be continued
	// after a member failed to decode
	continueOnError bool

	// logger stream for decoding and inspection
	logger logger

	// maxHunks is the maximum number of hunk records in one stream.
	// Set value to -1 to disable the check.
	maxHunks int64

	// maxHunkSize is the maximum size in bytes of a single hunk payload.
	// Set value to -1 to disable the check.
	maxHunkSize int64

	// maxInputSize is the maximum size of the input
	// Set value to -1 to disable the check.
	maxInputSize int64

	// noDecompression disables the detection of compressed input
	noDecompression bool

	// patterns is a list of file patterns to match archive members to inspect
	patterns []string

	// telemetryHook is a function to consume telemetry data after finished inspection
	// Important: do not adjust this value after inspection started
	telemetryHook TelemetryHook
}

// CheckMaxHunks checks if counter exceeds the configured maximum. If the maximum is exceeded,
// an error of kind [KindLimitExceeded] is returned.
func (c *Config) CheckMaxHunks(counter int64) error {

	// check if disabled
	if c.MaxHunks() == -1 {
		return nil
	}

	// check value
	if counter > c.MaxHunks() {
		return newError(KindLimitExceeded, nil, "%d hunks exceed maximum of %d", counter, c.MaxHunks())
	}
	return nil
}

// CheckHunkSize checks if size (in bytes) exceeds the configured maximum. If the maximum is
// exceeded, an error of kind [KindLimitExceeded] is returned.
func (c *Config) CheckHunkSize(size int64) error {

	// check if disabled
	if c.MaxHunkSize() == -1 {
		return nil
	}

	// check value
	if size > c.MaxHunkSize() {
		return newError(KindLimitExceeded, nil, "hunk of %d bytes exceeds maximum of %d", size, c.MaxHunkSize())
	}
	return nil
}

// ContinueOnError returns true if the inspection of an archive should continue
// after a member failed.
func (c *Config) ContinueOnError() bool {
	return c.continueOnError
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxHunks returns the maximum number of hunk records in one stream.
func (c *Config) MaxHunks() int64 {
	return c.maxHunks
}

// MaxHunkSize returns the maximum payload size of a single hunk in bytes.
func (c *Config) MaxHunkSize() int64 {
	return c.maxHunkSize
}

// MaxInputSize returns the maximum size of the input.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// NoDecompression returns true if compressed input should NOT be decompressed
// before decoding.
func (c *Config) NoDecompression() bool {
	return c.noDecompression
}

// Patterns returns a list of unix-filepath patterns to match archive members to inspect.
// Patterns are matched using [filepath.Match](https://golang.org/pkg/path/filepath/#Match).
func (c *Config) Patterns() []string {
	return c.patterns
}

// MatchesPatterns returns true if name matches one of the configured patterns or
// if no patterns are configured. Invalid patterns never match.
func (c *Config) MatchesPatterns(name string) bool {
	if len(c.patterns) == 0 {
		return true
	}
	for _, p := range c.patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(p, filepath.Base(name)); err == nil && ok {
			return true
		}
	}
	return false
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return func(ctx context.Context, d *TelemetryData) {
			// noop
		}
	}
	return c.telemetryHook
}

const (
	defaultContinueOnError = false         // stop on error and return error
	defaultMaxHunks        = 100000        // 100k hunks
	defaultMaxHunkSize     = 1 << 28       // 256 Mb, more than any Amiga ever had
	defaultMaxInputSize    = 1 << (10 * 3) // 1 Gb
	defaultNoDecompression = false         // detect compressed input
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		continueOnError: defaultContinueOnError,
		logger:          defaultLogger,
		maxHunks:        defaultMaxHunks,
		maxHunkSize:     defaultMaxHunkSize,
		maxInputSize:    defaultMaxInputSize,
		noDecompression: defaultNoDecompression,
		telemetryHook:   defaultTelemetryHook,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithContinueOnError options pattern function to continue inspecting the remaining
// members of an archive after a member failed. The failure is recorded in the
// member's [Report].
func WithContinueOnError(yes bool) ConfigOption {
	return func(c *Config) {
		c.continueOnError = yes
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxHunks options pattern function to set the maximum number of hunk records
// in one stream. (-1 to disable check)
func WithMaxHunks(maxHunks int64) ConfigOption {
	return func(c *Config) {
		c.maxHunks = maxHunks
	}
}

// WithMaxHunkSize options pattern function to set the maximum payload size of a
// single hunk in bytes. (-1 to disable check)
func WithMaxHunkSize(maxHunkSize int64) ConfigOption {
	return func(c *Config) {
		c.maxHunkSize = maxHunkSize
	}
}

// WithMaxInputSize options pattern function to set MaxInputSize for the input. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithNoDecompression options pattern function to disable the detection and
// decompression of compressed input.
func WithNoDecompression(disable bool) ConfigOption {
	return func(c *Config) {
		c.noDecompression = disable
	}
}

// WithPatterns options pattern function to set filepath patterns, that archive members
// need to match to be inspected.
// Patterns are matched using [pkg/path/filepath.Match].
func WithPatterns(pattern ...string) ConfigOption {
	return func(c *Config) {
		c.patterns = append(c.patterns, pattern...)
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after inspection.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
