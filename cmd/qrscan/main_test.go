package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	qrcode "github.com/coco-projects/qrcode"
)

// run executes one qrscan invocation in an isolated working directory.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "decode")
	assert.Contains(t, out, "encode")
}

func TestEncodeDecodeFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	contents := map[string]string{
		"a.png": "HELLO WORLD",
		"b.bmp": "01234567890123456789",
		"c.jpg": "Grüße aus Köln",
	}
	for name, text := range contents {
		format := strings.TrimPrefix(filepath.Ext(name), ".")
		_, _, err := run(t, "encode", "--size", "6", "--format", format, "-f", name, text)
		require.NoError(t, err, name)
	}

	out, _, err := run(t, "decode", "--workers", "2", "-o", "json", "a.png", "b.bmp", "c.jpg")
	require.NoError(t, err)

	var results []fileResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, contents[r.File], r.Text, r.File)
		assert.Equal(t, "L", r.ECLevel)
		assert.Equal(t, "]Q1", r.Symbology)
		assert.Len(t, r.Points, 3)
	}
	assert.Equal(t, "a.png", results[0].File, "argument order is kept")
	assert.Equal(t, "c.jpg", results[2].File)
}

func TestEncodeToStdout(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := run(t, "encode", "--ec", "H", "qrscan")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\x89PNG"))
}

func TestEncodeText(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := run(t, "encode", "--text", "--margin", "1", "HELLO")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	// Version 1 is 21 modules, 23 with the margin, drawn two rows a line.
	require.Len(t, lines, 12)
	for _, l := range lines {
		assert.Equal(t, 23, len([]rune(l)))
	}
	// The first line is the light margin row over a finder row.
	assert.True(t, strings.HasPrefix(lines[0], "█▀▀▀▀▀▀▀█"), lines[0])

	inv, _, err := run(t, "encode", "--text", "--invert", "--margin", "1", "HELLO")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(inv, " ▄▄▄▄▄▄▄ "), inv)
}

func TestDecodeFailures(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("notes.txt", []byte("not an image"), 0o600))
	_, _, err := run(t, "encode", "-f", "ok.png", "fine")
	require.NoError(t, err)

	metricsFile := filepath.Join(dir, "qrscan.prom")
	out, _, err := run(t, "decode", "--metrics-file", metricsFile, "-o", "yaml", "ok.png", "notes.txt", "missing.png")
	require.EqualError(t, err, "2 of 3 files failed to decode")

	var results []fileResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "fine", results[0].Text)
	assert.Contains(t, results[1].Error, "decode image")
	assert.Empty(t, results[1].ErrorKind, "not a symbol failure")
	assert.NotEmpty(t, results[2].Error)
	assert.Empty(t, results[2].ErrorKind)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `qrcode_decodes_total{outcome="ok"} 1`)
}

func TestConfigFileAndValidation(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("qrscan.yaml", []byte("output:\n  format: xml\n"), 0o600))
	_, _, err := run(t, "encode", "-f", "x.png", "x")
	assert.ErrorContains(t, err, "output.format")

	require.NoError(t, os.WriteFile("qrscan.yaml", []byte("encode:\n  error_correction: Q\noutput:\n  format: json\n"), 0o600))
	_, _, err = run(t, "encode", "-f", "q.png", "quality")
	require.NoError(t, err)
	out, _, err := run(t, "decode", "q.png")
	require.NoError(t, err)
	assert.Contains(t, out, `"ec_level": "Q"`)

	out, _, err = run(t, "decode", "-o", "text", "q.png")
	require.NoError(t, err)
	assert.Equal(t, "q.png: quality\n", out)
}

func TestDecodeErrorKind(t *testing.T) {
	t.Chdir(t.TempDir())
	blank := image.NewGray(image.Rect(0, 0, 120, 120))
	for i := range blank.Pix {
		blank.Pix[i] = 0xFF
	}
	f, err := os.Create("blank.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, blank))
	require.NoError(t, f.Close())

	out, _, err := run(t, "decode", "-o", "json", "blank.png", "missing.png")
	require.Error(t, err)

	var results []fileResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, qrcode.ErrNotFound.Error(), results[0].ErrorKind)
	assert.NotEmpty(t, results[1].Error)
	assert.Empty(t, results[1].ErrorKind)
}
