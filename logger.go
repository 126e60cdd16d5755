// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

//go:generate mockgen -source=logger.go -destination=internal/mocks/logger.go -package=mocks -mock_names=logger=MockLogger

// logger is an interface that defines the logging functions
// that are used by the decoder and the inspection pipeline
type logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
