// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	hunk "github.com/hashicorp/go-hunk"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// CLI are the cli parameters for the hunkinfo binary
type CLI struct {
	Files           []string         `arg:"" name:"file" help:"Hunk files, compressed files or archives to inspect. (\"-\" for STDIN)"`
	ContinueOnError bool             `short:"C" help:"Continue with the remaining archive members on error."`
	JSON            bool             `short:"j" name:"json" help:"Print reports as JSON."`
	MaxHunks        int64            `optional:"" default:"100000" help:"Maximum hunks that are decoded per file. (disable check: -1)"`
	MaxHunkSize     int64            `optional:"" default:"268435456" help:"Maximum size of a single hunk (in bytes). (disable check: -1)"`
	MaxInputSize    int64            `optional:"" default:"1073741824" help:"Maximum input size that allowed is (in bytes). (disable check: -1)"`
	MaxTime         int64            `optional:"" default:"60" help:"Maximum time that the inspection should take (in seconds). (disable check: -1)"`
	Metrics         bool             `short:"M" optional:"" default:"false" help:"Print metrics to log after each inspection."`
	NoDecompression bool             `short:"N" help:"Do not decompress compressed input."`
	Parallel        int              `short:"p" default:"4" help:"Number of files inspected in parallel."`
	Pattern         []string         `short:"P" optional:"" name:"pattern" help:"Glob patterns selecting archive members. Can be given multiple times."`
	Verbose         bool             `short:"v" optional:"" help:"Verbose logging."`
	Version         kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// result holds the outcome of inspecting one command line argument
type result struct {
	File    string         `json:"file"`
	Reports []*hunk.Report `json:"reports"`
	Err     error          `json:"-"`
}

// MarshalJSON adds the error message to the JSON output.
func (r result) MarshalJSON() ([]byte, error) {
	type Alias result
	var msg string
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return json.Marshal(&struct {
		Alias
		Error string `json:"error,omitempty"`
	}{Alias(r), msg})
}

// Run the entrypoint into hunkinfo as a cli tool
func Run(version, commit, date string) {
	ctx := context.Background()
	var cli CLI
	kong.Parse(&cli,
		kong.Description("Inspect AmigaOS hunk files and their version tags"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	} else if cli.Metrics {
		logLevel = slog.LevelInfo
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// setup telemetry hook
	telemetryToLog := func(ctx context.Context, td *hunk.TelemetryData) {
		if cli.Metrics {
			logger.Info("inspection finished", "telemetry", td)
		}
	}

	cfg := hunk.NewConfig(
		hunk.WithContinueOnError(cli.ContinueOnError),
		hunk.WithLogger(logger),
		hunk.WithMaxHunks(cli.MaxHunks),
		hunk.WithMaxHunkSize(cli.MaxHunkSize),
		hunk.WithMaxInputSize(cli.MaxInputSize),
		hunk.WithNoDecompression(cli.NoDecompression),
		hunk.WithPatterns(cli.Pattern...),
		hunk.WithTelemetryHook(telemetryToLog),
	)

	if cli.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second*time.Duration(cli.MaxTime))
		defer cancel()
	}

	results, err := inspectAll(ctx, cli.Files, cfg, cli.Parallel)
	if err != nil {
		logger.Error("inspection aborted", "error", err)
		os.Exit(-1)
	}

	if err := render(os.Stdout, results, cli.JSON); err != nil {
		logger.Error("writing output failed", "error", err)
		os.Exit(-1)
	}

	for _, r := range results {
		if r.Err != nil {
			os.Exit(1)
		}
	}
}

// inspectAll inspects files with up to parallel concurrent workers. Results
// are returned in the order of files. Failures of a single file are stored in
// its result, the returned error is only set if ctx is done.
func inspectAll(ctx context.Context, files []string, cfg *hunk.Config, parallel int) ([]result, error) {
	results := make([]result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports, err := inspect(ctx, file, cfg)
			results[i] = result{File: file, Reports: reports, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "inspection cancelled")
	}
	return results, nil
}

// inspect reads file from STDIN if it is "-", otherwise it is memory mapped.
func inspect(ctx context.Context, file string, cfg *hunk.Config) ([]*hunk.Report, error) {
	if file == "-" {
		reports, err := hunk.Inspect(ctx, bufio.NewReader(os.Stdin), file, cfg)
		return reports, errors.Wrap(err, "cannot inspect stdin")
	}
	if fi, err := os.Stat(file); err != nil {
		return nil, errors.Wrapf(err, "cannot inspect %s", file)
	} else if fi.Size() == 0 {
		// empty files cannot be memory mapped
		reports, err := hunk.Inspect(ctx, strings.NewReader(""), file, cfg)
		return reports, errors.Wrapf(err, "cannot inspect %s", file)
	}
	reports, err := hunk.InspectFile(ctx, file, cfg)
	return reports, errors.Wrapf(err, "cannot inspect %s", file)
}

// render writes results as JSON lines or as human readable text to w.
func render(w io.Writer, results []result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return errors.Wrap(err, "cannot encode result")
			}
		}
		return nil
	}

	bw := bufio.NewWriter(w)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(bw, "%s: error: %v\n", r.File, r.Err)
			continue
		}
		if len(r.Reports) == 0 {
			fmt.Fprintf(bw, "%s: no hunk files\n", r.File)
		}
		for _, rep := range r.Reports {
			name := rep.Name
			if name != r.File {
				name = r.File + ":" + name
			}
			if rep.Err != nil {
				fmt.Fprintf(bw, "%s: error: %v\n", name, rep.Err)
				continue
			}
			fmt.Fprintf(bw, "%s: %s, %d hunks, %d segments\n", name, rep.Type(), len(rep.Hunks), len(rep.Hunks.Segments()))
			for _, h := range rep.Hunks {
				fmt.Fprintf(bw, "  %s\n", h)
			}
			switch {
			case rep.Version != nil:
				fmt.Fprintf(bw, "  version: %s %d.%d (%02d.%02d.%d)\n", rep.Version.Name, rep.Version.Version, rep.Version.Revision, rep.Version.Day, rep.Version.Month, rep.Version.Year)
			case rep.VersionError != nil:
				fmt.Fprintf(bw, "  version: %q (%v)\n", rep.VersionTag, rep.VersionError)
			}
		}
	}
	return bw.Flush()
}
