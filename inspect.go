// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/mmap"
)

// fileTypeHunk is reported as input type for plain hunk streams
const fileTypeHunk = "hunk"

// maxHeaderLength is the number of bytes peeked to identify a compression or
// an archive.
var maxHeaderLength int

func init() {
	for _, c := range compressions {
		for _, mb := range c.MagicBytes {
			maxHeaderLength = max(maxHeaderLength, len(mb))
		}
	}
	for _, a := range archives {
		for _, mb := range a.MagicBytes {
			maxHeaderLength = max(maxHeaderLength, a.Offset+len(mb))
		}
	}
}

// Report is the result of inspecting a single hunk stream.
type Report struct {
	// Name of the inspected file or archive member
	Name string

	// Hunks holds the decoded stream. It is empty if Err is set.
	Hunks Sequence

	// VersionTag is the raw version tag found in the stream, if any
	VersionTag string

	// Version is the parsed VersionTag. It is nil if no tag was found or
	// the tag is malformed.
	Version *VersionInfo

	// VersionError is set if a tag was found but could not be parsed
	VersionError error

	// Err is set for archive members that failed to decode while
	// inspection continued on error
	Err error
}

// Type returns "executable" or "object" depending on the first hunk, or an
// empty string if nothing was decoded.
func (r *Report) Type() string {
	if len(r.Hunks) == 0 {
		return ""
	}
	if r.Hunks[0].ID == IDUnit {
		return "object"
	}
	return "executable"
}

// MarshalJSON implements the [encoding/json.Marshaler] interface with a
// summary of the decoded hunks instead of their payloads.
func (r *Report) MarshalJSON() ([]byte, error) {
	hunks := make([]string, 0, len(r.Hunks))
	for _, h := range r.Hunks {
		hunks = append(hunks, h.String())
	}
	errString := func(err error) string {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	return json.Marshal(&struct {
		Name         string       `json:"name"`
		Type         string       `json:"type,omitempty"`
		Segments     int          `json:"segments"`
		Hunks        []string     `json:"hunks"`
		VersionTag   string       `json:"version_tag,omitempty"`
		Version      *VersionInfo `json:"version,omitempty"`
		VersionError string       `json:"version_error,omitempty"`
		Error        string       `json:"error,omitempty"`
	}{
		Name:         r.Name,
		Type:         r.Type(),
		Segments:     len(r.Hunks.Segments()),
		Hunks:        hunks,
		VersionTag:   r.VersionTag,
		Version:      r.Version,
		VersionError: errString(r.VersionError),
		Error:        errString(r.Err),
	})
}

// InspectFile memory maps the file at path and inspects it with [Inspect].
func InspectFile(ctx context.Context, path string, cfg *Config) ([]*Report, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, newError(KindIOFailure, err, "cannot open %s", path)
	}
	defer m.Close()
	return Inspect(ctx, io.NewSectionReader(m, 0, int64(m.Len())), path, cfg)
}

// Inspect decodes the hunk streams in src and reports on each of them. The
// input may be wrapped in a compression (gzip, bzip2, xz, zstd, lz4, snappy,
// zlib, brotli) and may be a tar, zip, 7zip or rar archive, in which case every
// regular member matching the configured patterns is inspected. Members that
// are no hunk streams are skipped. name is used for pattern matching and to
// detect brotli by its extension.
//
// If cfg is nil, the default configuration is used. The configured telemetry
// hook is called once the inspection has finished.
func Inspect(ctx context.Context, src io.Reader, name string, cfg *Config) ([]*Report, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry capturing
	td := &TelemetryData{InputType: fileTypeHunk}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureDecodeDuration(td, time.Now())

	limitedReader := newLimitErrorReader(src, cfg.MaxInputSize())
	defer captureInputSize(td, limitedReader)

	in, err := newPeekReader(limitedReader, maxHeaderLength)
	if err != nil {
		return nil, fail(cfg, td, "cannot read header", ioError(err, "reading header of %s", name))
	}

	// unwrap a compressed input
	if c, ok := detectCompression(in.Peek(), name); ok && !cfg.NoDecompression() {
		cfg.Logger().Info("decompressing input", "name", name, "type", c.Extension)
		dec, err := c.Decompress(in)
		if err != nil {
			return nil, fail(cfg, td, "cannot create decompressor", ioError(err, "decompressing %s", name))
		}
		if closer, ok := dec.(io.Closer); ok {
			defer closer.Close()
		}
		td.InputType = c.Extension
		name = trimExtension(name, c.Extension)

		// the decompressed stream is limited as well
		in, err = newPeekReader(newLimitErrorReader(dec, cfg.MaxInputSize()), maxHeaderLength)
		if err != nil {
			return nil, fail(cfg, td, "cannot read decompressed header", ioError(err, "decompressing %s", name))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fail(cfg, td, "inspection cancelled", err)
	}

	if a, ok := detectArchive(in.Peek()); ok {
		if td.InputType == fileTypeHunk {
			td.InputType = a.Extension
		} else {
			td.InputType = a.Extension + "." + td.InputType
		}
		return inspectArchive(ctx, a, in, cfg, td)
	}

	rep, err := inspectStream(name, in, cfg, td)
	if err != nil {
		return nil, fail(cfg, td, "cannot decode "+name, err)
	}
	return []*Report{rep}, nil
}

// inspectArchive inspects all matching regular members of an archive.
func inspectArchive(ctx context.Context, a archive, src io.Reader, cfg *Config, td *TelemetryData) ([]*Report, error) {
	cfg.Logger().Info("walking archive", "type", a.Extension)

	walker, err := a.Walk(src)
	if err != nil {
		return nil, fail(cfg, td, "cannot open archive", ioError(err, "opening %s archive", a.Extension))
	}

	var reports []*Report
	for {
		if err := ctx.Err(); err != nil {
			return nil, fail(cfg, td, "inspection cancelled", err)
		}

		entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fail(cfg, td, "cannot read archive entry", ioError(err, "reading %s archive", walker.Type()))
		}

		if !entry.IsRegular() {
			continue
		}
		if !cfg.MatchesPatterns(entry.Name()) {
			cfg.Logger().Debug("skipping unmatched member", "name", entry.Name())
			td.SkippedFiles++
			continue
		}

		rep, err := inspectEntry(entry, cfg, td)
		if KindOf(err) == KindNotAHunkStream {
			cfg.Logger().Debug("skipping member without hunks", "name", entry.Name())
			td.SkippedFiles++
			continue
		}
		if err != nil {
			if err := handleError(cfg, td, "cannot decode "+entry.Name(), err); err != nil {
				return nil, err
			}
			reports = append(reports, &Report{Name: entry.Name(), Err: err})
			continue
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func inspectEntry(entry archiveEntry, cfg *Config, td *TelemetryData) (*Report, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, ioError(err, "opening %s", entry.Name())
	}
	defer rc.Close()
	return inspectStream(entry.Name(), rc, cfg, td)
}

// inspectStream decodes a single hunk stream and scans its bytes for a
// version tag.
func inspectStream(name string, src io.Reader, cfg *Config, td *TelemetryData) (*Report, error) {
	var raw bytes.Buffer
	seq, err := Decode(io.TeeReader(src, &raw), cfg)
	if err != nil {
		return nil, err
	}

	rep := &Report{Name: name, Hunks: seq}
	td.HunkFiles++
	td.Hunks += int64(len(seq))
	for _, h := range seq.Segments() {
		td.PayloadSize += int64(len(h.Payload))
	}

	tag, ok := ScanVersion(raw.Bytes())
	if !ok {
		// a tag at the start of a segment follows its size word, not a NUL
		tag, ok = ScanHunks(seq)
	}
	if !ok {
		cfg.Logger().Debug("no version tag", "name", name)
		return rep, nil
	}
	td.VersionTags++
	rep.VersionTag = tag
	v, err := ParseVersion(tag)
	if err != nil {
		cfg.Logger().Warn("malformed version tag", "name", name, "tag", tag, "error", err)
		rep.VersionError = err
		return rep, nil
	}
	rep.Version = &v
	cfg.Logger().Info("inspected hunk file", "name", name, "hunks", len(seq), "version", v.String())
	return rep, nil
}

// trimExtension removes ext from name, if present.
func trimExtension(name, ext string) string {
	e := filepath.Ext(name)
	if strings.EqualFold(e, "."+ext) {
		return strings.TrimSuffix(name, e)
	}
	return name
}

// handleError records err in td. With ContinueOnError it logs the error and
// returns nil, otherwise it returns the error prefixed with msg.
func handleError(cfg *Config, td *TelemetryData, msg string, err error) error {
	td.DecodeErrors++
	td.LastDecodeError = fmt.Errorf("%s: %w", msg, err)

	if cfg.ContinueOnError() {
		cfg.Logger().Error(msg, "error", err)
		return nil
	}
	return td.LastDecodeError
}

// fail records err in td and returns it regardless of ContinueOnError.
func fail(cfg *Config, td *TelemetryData, msg string, err error) error {
	td.DecodeErrors++
	td.LastDecodeError = fmt.Errorf("%s: %w", msg, err)
	cfg.Logger().Error(msg, "error", err)
	return td.LastDecodeError
}
