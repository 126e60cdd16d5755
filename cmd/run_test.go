// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	hunk "github.com/hashicorp/go-hunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeExecutable writes a single segment executable holding tag to dir
func writeExecutable(t *testing.T, dir, name, tag string) string {
	t.Helper()
	payload := append([]byte{0, 0, 0, 0}, []byte(tag+"\x00")...)
	for len(payload)%4 != 0 {
		payload = append(payload, 0)
	}
	words := uint32(len(payload) / 4)

	var buf bytes.Buffer
	for _, w := range []uint32{0x3F3, 0, 1, 0, 0, words, 0x3EA, words} {
		_ = binary.Write(&buf, binary.BigEndian, w)
	}
	buf.Write(payload)
	_ = binary.Write(&buf, binary.BigEndian, uint32(0x3F2))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestInspectAll(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeExecutable(t, dir, "a", "$VER: a 1.0 (1.1.1990)"),
		filepath.Join(dir, "missing"),
		writeExecutable(t, dir, "b", "$VER: b 2.0 (1.1.1991)"),
	}
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	files = append(files, empty)

	results, err := inspectAll(context.Background(), files, hunk.NewConfig(), 2)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	require.Len(t, results[0].Reports, 1)
	assert.Equal(t, "a", results[0].Reports[0].Version.Name)

	assert.Error(t, results[1].Err)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, "b", results[2].Reports[0].Version.Name)

	assert.ErrorIs(t, results[3].Err, hunk.ErrNotAHunkStream)
}

func TestInspectAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := inspectAll(ctx, []string{"a", "b"}, hunk.NewConfig(), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	path := writeExecutable(t, dir, "prog", "$VER: prog 1.2 (3.4.1995)")
	results, err := inspectAll(context.Background(), []string{path, filepath.Join(dir, "missing")}, hunk.NewConfig(), 1)
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, render(&text, results, false))
	assert.Contains(t, text.String(), path+": executable, 3 hunks, 1 segments\n")
	assert.Contains(t, text.String(), "  HUNK_HEADER segments=1\n")
	assert.Contains(t, text.String(), "  version: prog 1.2 (03.04.1995)\n")
	assert.Contains(t, text.String(), "missing: error: ")

	var js bytes.Buffer
	require.NoError(t, render(&js, results, true))
	dec := json.NewDecoder(&js)

	var first map[string]interface{}
	require.NoError(t, dec.Decode(&first))
	assert.Equal(t, path, first["file"])
	assert.Len(t, first["reports"], 1)
	assert.NotContains(t, first, "error")

	var second map[string]interface{}
	require.NoError(t, dec.Decode(&second))
	assert.Contains(t, second, "error")
}
