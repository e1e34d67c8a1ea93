package installer

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestSanitizePath rejects archive entries escaping the destination.
func TestSanitizePath(t *testing.T) {
	t.Parallel()

	destDir := t.TempDir()

	cases := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "plain file", path: "pwsh"},
		{name: "nested file", path: "Modules/Helper/helper.psm1"},
		{name: "dot segments staying inside", path: "Modules/../pwsh"},
		{name: "traversal", path: "../../../etc/passwd", wantErr: true},
		{name: "hidden traversal", path: "Modules/../../../etc/passwd", wantErr: true},
	}

	for _, tc := range cases {
		_, err := sanitizePath(destDir, tc.path)
		if tc.wantErr {
			require.ErrorIs(t, err, errUnsafeArchivePath, tc.name)
		} else {
			require.NoError(t, err, tc.name)
		}
	}
}

// writeTarGz writes a tar.gz file built from the provided header/body pairs.
func writeTarGz(t *testing.T, path string, headers []*tar.Header, bodies [][]byte) {
	t.Helper()

	var buf bytes.Buffer

	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for i, header := range headers {
		header.ModTime = time.Now()
		require.NoError(t, tw.WriteHeader(header))

		if len(bodies[i]) > 0 {
			_, err := tw.Write(bodies[i])
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

// TestExtractArchiveIgnoresArchiveModes verifies that recorded permission
// bits never survive extraction.
func TestExtractArchiveIgnoresArchiveModes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := filepath.Join(dir, "release.tar.gz")
	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	writeTarGz(t, archive,
		[]*tar.Header{
			{Name: "bin/", Typeflag: tar.TypeDir, Mode: 0o700},
			{Name: "bin/tool", Typeflag: tar.TypeReg, Mode: 0o4777, Size: 4},
			{Name: "data.txt", Typeflag: tar.TypeReg, Mode: 0o000, Size: 4},
		},
		[][]byte{nil, []byte("exec"), []byte("data")},
	)

	require.NoError(t, extractArchive(archive, dest))

	for _, name := range []string{"bin/tool", "data.txt"} {
		info, err := os.Stat(filepath.Join(dest, name))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o644), info.Mode().Perm(), name)
	}
}

// TestExtractArchiveSymlinks keeps safe internal symlinks and rejects escapes.
func TestExtractArchiveSymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	safe := filepath.Join(dir, "safe.tar.gz")
	writeTarGz(t, safe,
		[]*tar.Header{
			{Name: "tool-7.5.3", Typeflag: tar.TypeReg, Mode: 0o755, Size: 4},
			{Name: "tool", Typeflag: tar.TypeSymlink, Linkname: "tool-7.5.3"},
		},
		[][]byte{[]byte("exec"), nil},
	)
	require.NoError(t, extractArchive(safe, dest))

	target, err := os.Readlink(filepath.Join(dest, "tool"))
	require.NoError(t, err)
	require.Equal(t, "tool-7.5.3", target)

	escaping := filepath.Join(dir, "escape.tar.gz")
	writeTarGz(t, escaping,
		[]*tar.Header{
			{Name: "evil", Typeflag: tar.TypeSymlink, Linkname: "../../etc/passwd"},
		},
		[][]byte{nil},
	)
	require.ErrorIs(t, extractArchive(escaping, dest), errUnsafeArchivePath)
}

// TestExtractArchiveCorrupt verifies unreadable input surfaces an error.
func TestExtractArchiveCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := filepath.Join(dir, "corrupt.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("not a gzip stream"), 0o600))

	require.Error(t, extractArchive(archive, dir))
}
