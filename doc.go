// Package hunk decodes AmigaOS hunk files, the executable and object file
// format of the Amiga, and finds the version tag embedded in them.
//
// [Decode] reads a complete stream into a [Sequence], [NewReader] returns a
// [Reader] that yields one [Hunk] at a time. Failures are reported as [*Error]
// values carrying a [Kind], which can be matched with [errors.Is] against the
// Err* sentinels.
//
// [ScanVersion] searches raw bytes for a "$VER:" tag and [ParseVersion] splits
// it into a [VersionInfo].
//
// [Inspect] and [InspectFile] combine both for files as they are distributed:
// optionally compressed, optionally packed into a tar, zip, 7zip or rar
// archive. Configuration is done with [Config] and its options, telemetry is
// delivered as [TelemetryData] to the configured [TelemetryHook].
package hunk
