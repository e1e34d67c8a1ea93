package verifier

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds a single version-report invocation.
const DefaultCommandTimeout = 10 * time.Second

// errEmptyReport indicates the entry point ran but reported nothing.
var errEmptyReport = errors.New("empty version report")

// Report invokes the entry point's version-reporting mode and returns its
// trimmed output. A binary that cannot execute, exits non-zero or prints
// nothing fails: this catches corrupted extraction and architecture
// mismatches that structural checks cannot.
func Report(ctx context.Context, binary string, args []string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := exec.CommandContext(cmdCtx, binary, args...).Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", binary, err)
	}

	report := strings.TrimSpace(string(output))
	if report == "" {
		return "", fmt.Errorf("%s: %w", binary, errEmptyReport)
	}

	return report, nil
}
