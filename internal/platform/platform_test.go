package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolve verifies the closed identifier table.
func TestResolve(t *testing.T) {
	t.Parallel()

	cases := map[string]Token{
		"x86_64":  TokenX64,
		"aarch64": TokenARM64,
	}
	for raw, want := range cases {
		got, err := Resolve(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

// TestResolveUnsupported ensures unknown identifiers fail loudly and name the input.
func TestResolveUnsupported(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "i686", "ppc64le", "riscv64", "amd64"} {
		_, err := Resolve(raw)
		require.ErrorIs(t, err, ErrUnsupportedArchitecture)

		if raw != "" {
			require.ErrorContains(t, err, raw)
		}
	}
}

// TestDetect exercises the uname path on the host.
func TestDetect(t *testing.T) {
	t.Parallel()

	token, err := Detect()
	if err != nil {
		// Host may run an architecture outside the supported table.
		require.ErrorIs(t, err, ErrUnsupportedArchitecture)
		return
	}

	require.Contains(t, []Token{TokenX64, TokenARM64}, token)
}
