package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/coco-projects/qrcode/encoder"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.GreaterOrEqual(t, cfg.Decode.Workers, 1)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "loud"
	cfg.Decode.Workers = 0
	cfg.Encode.ErrorCorrection = "Z"
	cfg.Encode.Format = "gif"
	cfg.Output.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"log.level", "decode.workers", "encode.error_correction", "encode.format", "output.format"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := NewLoader(nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "hybrid", cfg.Decode.Binarizer)
	assert.Equal(t, 3, cfg.Encode.Size)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := DefaultConfig()
	file.Decode.TryHarder = true
	file.Decode.Workers = 2
	file.Encode.ErrorCorrection = "H"
	file.Output.Format = "yaml"
	data, err := yaml.Marshal(file)
	require.NoError(t, err)
	path := filepath.Join(dir, "qrscan.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("QRSCAN_DECODE_WORKERS", "5")
	t.Setenv("QRSCAN_LOG_LEVEL", "debug")

	l := NewLoader(nil)
	cfg, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.ConfigFileUsed())
	assert.True(t, cfg.Decode.TryHarder)
	assert.Equal(t, 5, cfg.Decode.Workers, "environment overrides the file")
	assert.Equal(t, "H", cfg.Encode.ErrorCorrection)
	assert.Equal(t, "yaml", cfg.Output.Format)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadSearchPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qrscan.yaml"), []byte("encode:\n  size: 7\n"), 0o600))

	cfg, err := NewLoader(nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Encode.Size)
	assert.Equal(t, "L", cfg.Encode.ErrorCorrection)
}

func TestLoadErrors(t *testing.T) {
	_, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "qrscan.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("output:\n  format: xml\n"), 0o600))
	_, err = NewLoader(nil).Load(bad)
	assert.ErrorContains(t, err, "output.format")
}

func TestOptionsConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Decode.TryHarder = true
	cfg.Decode.CharacterSet = "Shift_JIS"
	opts := cfg.Decode.Options(nil)
	assert.True(t, opts.TryHarder)
	assert.Equal(t, "Shift_JIS", opts.Charset())

	cfg.Encode.Format = "jpg"
	cfg.Encode.Size = 6
	eo := cfg.Encode.Options()
	assert.Equal(t, 6, eo.Size)
	want, err := encoder.ParseFormat("jpeg")
	require.NoError(t, err)
	assert.Equal(t, want, eo.Format)
}
