package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out, errb []byte
	err       error

	name  string
	args  []string
	stdin []byte
}

func (f *fakeRunner) Run(_ context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	f.stdin = stdin
	f.name = name
	f.args = args
	return f.out, f.errb, f.err
}

func TestRecognize_BuildsCommand(t *testing.T) {
	runner := &fakeRunner{out: []byte("Jane Doe  \r\njane@x.com\n\n\n\nSkills\f")}
	tess := NewTesseractWithRunner(Config{TessdataDir: "/usr/share/tessdata", PSM: 6}, runner)

	text, err := tess.Recognize(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe\njane@x.com\n\nSkills", text)
	assert.Equal(t, DefaultBinary, runner.name)
	assert.Equal(t, []string{"stdin", "stdout", "-l", "eng", "--psm", "6", "--tessdata-dir", "/usr/share/tessdata"}, runner.args)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, runner.stdin)
}

func TestRecognize_ExplicitLanguage(t *testing.T) {
	runner := &fakeRunner{out: []byte("Hallo")}
	tess := NewTesseractWithRunner(Config{Binary: "/opt/tesseract", Language: "fra"}, runner)

	_, err := tess.Recognize(context.Background(), []byte("img"), "deu")
	require.NoError(t, err)
	assert.Equal(t, "/opt/tesseract", runner.name)
	assert.Equal(t, []string{"stdin", "stdout", "-l", "deu"}, runner.args)
}

func TestRecognize_Errors(t *testing.T) {
	t.Run("empty image", func(t *testing.T) {
		runner := &fakeRunner{}
		_, err := NewTesseractWithRunner(Config{}, runner).Recognize(context.Background(), nil, "")
		require.Error(t, err)
		assert.Empty(t, runner.name)
	})
	t.Run("process failure carries stderr", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("exit status 1"), errb: []byte("Error in pixReadMem\n")}
		_, err := NewTesseractWithRunner(Config{}, runner).Recognize(context.Background(), []byte("img"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exit status 1")
		assert.Contains(t, err.Error(), "pixReadMem")
	})
	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		runner := &fakeRunner{err: errors.New("signal: killed")}
		_, err := NewTesseractWithRunner(Config{}, runner).Recognize(ctx, []byte("img"), "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\n\nb", Normalize("  a \t\n\n\n\nb\f\f"))
	assert.Equal(t, "", Normalize("\f \n"))
}
