package integration

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/toolstand/toolstand/internal/config"
	"github.com/toolstand/toolstand/internal/service/installer"
	"github.com/toolstand/toolstand/internal/service/inventory"
	"github.com/toolstand/toolstand/internal/service/verifier"
)

// buildRelease produces a tar.gz whose entry point is a shell script
// reporting the requested version.
func buildRelease(t *testing.T, version string) []byte {
	t.Helper()

	var buf bytes.Buffer

	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	script := fmt.Sprintf("#!/bin/sh\necho %s\n", version)
	entries := []struct {
		name string
		body string
	}{
		{name: "pwsh", body: script},
		{name: "LICENSE.txt", body: "license text"},
	}

	for _, entry := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:    entry.name,
			Mode:    0o777,
			Size:    int64(len(entry.body)),
			ModTime: time.Now(),
		}))

		_, err := tw.Write([]byte(entry.body))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	return buf.Bytes()
}

// startReleaseServer serves generated archives for any requested version.
func startReleaseServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path shape: /releases/download/v<version>/powershell-<version>-linux-<arch>.tar.gz
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 || !strings.HasPrefix(parts[2], "v") {
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write(buildRelease(t, strings.TrimPrefix(parts[2], "v")))
	}))
	t.Cleanup(server.Close)

	return server
}

// TestProvisioner_InstallVerifyList runs the full pipeline through the
// public service entry points: install two releases, re-verify them and
// render the inventory.
func TestProvisioner_InstallVerifyList(t *testing.T) {
	t.Parallel()

	server := startReleaseServer(t)
	root := t.TempDir()

	cfg := config.Default()
	cfg.InstallRoot = filepath.Join(root, "toolchains")
	cfg.BinDir = filepath.Join(root, "bin")
	cfg.Timeout = 30 * time.Second
	cfg.Products = map[string]config.Product{
		"powershell": {
			ReleaseURLTemplate: server.URL +
				"/releases/download/v{version}/powershell-{version}-linux-{arch}.tar.gz",
			Entrypoint:  "pwsh",
			SymlinkBase: "pwsh",
			VersionArgs: []string{"--version"},
		},
	}

	cfgPath := filepath.Join(root, config.DefaultConfigFilename)
	require.NoError(t, config.Save(cfgPath, cfg))

	ctx := context.Background()

	// First release.
	err := installer.Run(ctx, &installer.Options{
		ConfigPath: cfgPath,
		Product:    "powershell",
		Version:    "7.5.2",
	})
	require.NoError(t, err)

	current, err := os.Readlink(filepath.Join(cfg.BinDir, "pwsh"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.InstallRoot, "powershell", "7.5", "pwsh"), current)

	// An older prefix installed afterwards wins the "current" link but must
	// not disturb the 7.5 tree.
	err = installer.Run(ctx, &installer.Options{
		ConfigPath: cfgPath,
		Product:    "powershell",
		Version:    "7.4.1",
	})
	require.NoError(t, err)

	current, err = os.Readlink(filepath.Join(cfg.BinDir, "pwsh"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.InstallRoot, "powershell", "7.4", "pwsh"), current)

	qualified, err := os.Readlink(filepath.Join(cfg.BinDir, "pwsh7.5"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.InstallRoot, "powershell", "7.5", "pwsh"), qualified)

	// Both releases still pass re-verification.
	err = verifier.Run(ctx, &verifier.Options{
		ConfigPath: cfgPath,
		Product:    "powershell",
	})
	require.NoError(t, err)

	// The inventory shows both prefixes and marks the current one.
	var listing bytes.Buffer

	err = inventory.Run(ctx, &inventory.Options{
		ConfigPath: cfgPath,
		Out:        &listing,
	})
	require.NoError(t, err)

	output := listing.String()
	require.Contains(t, output, "7.5.2")
	require.Contains(t, output, "7.4.1")

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "7.4.1") {
			require.Contains(t, line, "*")
		}

		if strings.Contains(line, "7.5.2") {
			require.NotContains(t, line, "*")
		}
	}
}
