package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"resume-parser/internal/shared/telemetry"
)

// Runner executes an external command with stdin and captures its output.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil {
		telemetry.Error("ocr.exec_failed", map[string]any{
			"cmd":         name,
			"args":        strings.Join(args, " "),
			"duration_ms": time.Since(start).Milliseconds(),
			"stderr":      truncate(strings.TrimSpace(errb.String()), maxStderr),
			"err":         err,
		})
	}
	return out.Bytes(), errb.Bytes(), err
}
