// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLimitErrorReaderRead(t *testing.T) {
	tests := []struct {
		name       string
		limit      int64
		input      string
		bufferSize int
		expectN    int64
		wantErr    bool
	}{
		{
			name:       "Under limit",
			limit:      10,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
			wantErr:    false,
		},
		{
			name:       "At limit",
			limit:      5,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
			wantErr:    false,
		},
		{
			name:       "Over limit",
			limit:      4,
			input:      "12345",
			bufferSize: 5,
			expectN:    4,
			wantErr:    false,
		},
		{
			name:       "Under limit with buffer",
			limit:      10,
			input:      "12345",
			bufferSize: 2,
			expectN:    2,
			wantErr:    false,
		},
		{
			name:       "Unlimited",
			limit:      -1,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
			wantErr:    false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := strings.NewReader(test.input)
			l := newLimitErrorReader(r, test.limit)
			buf := make([]byte, test.bufferSize)
			n, err := l.Read(buf)
			if (err != nil) != test.wantErr {
				t.Fatalf("Read() error = %v, wantErr %v", err, test.wantErr)
			}
			if int64(n) != test.expectN {
				t.Errorf("Read() = %v, want %v", n, test.expectN)
			}
			if l.ReadBytes() != test.expectN {
				t.Errorf("ReadBytes() = %v, want %v", l.ReadBytes(), test.expectN)
			}
		})
	}
}

func TestLimitErrorReaderExceeded(t *testing.T) {
	l := newLimitErrorReader(strings.NewReader("12345"), 4)
	data, err := io.ReadAll(l)
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("ReadAll() error = %v, want %v", err, ErrLimitExceeded)
	}
	if string(data) != "1234" {
		t.Errorf("ReadAll() = %q, want %q", data, "1234")
	}
}

func TestLimitErrorReaderExactlyAtLimit(t *testing.T) {
	l := newLimitErrorReader(strings.NewReader("12345"), 5)
	data, err := io.ReadAll(l)
	if err != nil {
		t.Fatalf("ReadAll() error = %v, want nil", err)
	}
	if string(data) != "12345" {
		t.Errorf("ReadAll() = %q, want %q", data, "12345")
	}
	if l.ReadBytes() != 5 {
		t.Errorf("ReadBytes() = %v, want 5", l.ReadBytes())
	}
}
