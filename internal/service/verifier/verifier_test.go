package verifier

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script for use as a fake entry point.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	return path
}

// TestReport verifies output capture from a working entry point.
func TestReport(t *testing.T) {
	t.Parallel()

	path := writeScript(t, t.TempDir(), "fake-pwsh", `echo "7.5.3"`)

	report, err := Report(context.Background(), path, []string{"--version"}, 0)
	require.NoError(t, err)
	require.Equal(t, "7.5.3", report)
}

// TestReportFailures covers missing binaries, non-zero exits and empty output.
func TestReportFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Report(context.Background(), filepath.Join(dir, "missing"), nil, 0)
	require.Error(t, err)

	failing := writeScript(t, dir, "failing", "exit 3")
	_, err = Report(context.Background(), failing, nil, 0)
	require.Error(t, err)

	silent := writeScript(t, dir, "silent", "true")
	_, err = Report(context.Background(), silent, nil, 0)
	require.ErrorIs(t, err, errEmptyReport)
}

// TestReportTimeout ensures hanging entry points are cut off.
func TestReportTimeout(t *testing.T) {
	t.Parallel()

	hanging := writeScript(t, t.TempDir(), "hanging", "sleep 30")

	start := time.Now()
	_, err := Report(context.Background(), hanging, nil, 100*time.Millisecond)
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}
