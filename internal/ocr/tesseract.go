package ocr

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"resume-parser/internal/shared/telemetry"
)

const (
	DefaultBinary   = "tesseract"
	DefaultLanguage = "eng"
	maxStderr       = 512
)

// Config controls how the tesseract CLI is invoked.
type Config struct {
	Binary      string // name or absolute path; empty means "tesseract"
	Language    string // used when Recognize gets no language; empty means "eng"
	TessdataDir string
	PSM         int // page segmentation mode; 0 keeps tesseract's default
}

// Tesseract recognizes text by piping image bytes through the tesseract CLI.
type Tesseract struct {
	cfg    Config
	runner Runner
}

func NewTesseract(cfg Config) *Tesseract {
	return NewTesseractWithRunner(cfg, execRunner{})
}

// NewTesseractWithRunner is NewTesseract with a caller-supplied process runner.
func NewTesseractWithRunner(cfg Config, runner Runner) *Tesseract {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = DefaultLanguage
	}
	return &Tesseract{cfg: cfg, runner: runner}
}

// Recognize returns the text tesseract finds in image. Output for the same
// image is not guaranteed to be stable across tesseract versions.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("tesseract: empty image")
	}
	if strings.TrimSpace(lang) == "" {
		lang = t.cfg.Language
	}

	// tesseract stdin stdout -l <lang>
	args := []string{"stdin", "stdout", "-l", lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	start := time.Now()
	out, errb, err := t.runner.Run(ctx, image, t.cfg.Binary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), maxStderr))
	}
	text := Normalize(string(out))
	telemetry.Debug("ocr.recognized", map[string]any{
		"lang":        lang,
		"image_bytes": len(image),
		"chars":       len(text),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return text, nil
}

// Available reports whether the tesseract binary can be found.
func (t *Tesseract) Available() error {
	if _, err := exec.LookPath(t.cfg.Binary); err != nil {
		return fmt.Errorf("tesseract binary %q: %w", t.cfg.Binary, err)
	}
	return nil
}

var (
	reTrailingSpace = regexp.MustCompile(`[ \t]+\n`)
	reBlankRuns     = regexp.MustCompile(`\n{3,}`)
)

// Normalize removes page-break form feeds, trailing spaces and runs of blank lines.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	s = reTrailingSpace.ReplaceAllString(s, "\n")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
