package toolchain

import (
	"strings"

	"github.com/toolstand/toolstand/internal/platform"
)

// ReleaseURL renders a vendor artifact URL template by substituting the
// version string and architecture token.
func ReleaseURL(template, version string, arch platform.Token) string {
	replacer := strings.NewReplacer(
		"{version}", version,
		"{arch}", string(arch),
	)

	return replacer.Replace(template)
}
