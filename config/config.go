// Package config holds qrscan's settings: defaults, then the qrscan.yaml
// file, then QRSCAN_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/decoder"
	"github.com/coco-projects/qrcode/encoder"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
	Decode  DecodeConfig  `mapstructure:"decode" yaml:"decode" json:"decode"`
	Encode  EncodeConfig  `mapstructure:"encode" yaml:"encode" json:"encode"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

type DecodeConfig struct {
	TryHarder    bool   `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	PureBarcode  bool   `mapstructure:"pure_barcode" yaml:"pure_barcode" json:"pure_barcode"`
	AlsoInverted bool   `mapstructure:"also_inverted" yaml:"also_inverted" json:"also_inverted"`
	CharacterSet string `mapstructure:"character_set" yaml:"character_set" json:"character_set"`
	// Binarizer is "hybrid" or "global".
	Binarizer string `mapstructure:"binarizer" yaml:"binarizer" json:"binarizer"`
	Workers   int    `mapstructure:"workers" yaml:"workers" json:"workers"`
}

type EncodeConfig struct {
	ErrorCorrection string `mapstructure:"error_correction" yaml:"error_correction" json:"error_correction"`
	CharacterSet    string `mapstructure:"character_set" yaml:"character_set" json:"character_set"`
	// Size is pixels per module.
	Size   int    `mapstructure:"size" yaml:"size" json:"size"`
	Margin int    `mapstructure:"margin" yaml:"margin" json:"margin"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

type OutputConfig struct {
	// Format is "text", "json" or "yaml".
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

type MetricsConfig struct {
	// Textfile, when set, receives the Prometheus metrics after a run.
	Textfile string `mapstructure:"textfile" yaml:"textfile" json:"textfile"`
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Decode: DecodeConfig{
			Binarizer: "hybrid",
			Workers:   runtime.NumCPU(),
		},
		Encode: EncodeConfig{
			ErrorCorrection: "L",
			Size:            3,
			Margin:          qrcode.DefaultMargin,
			Format:          "png",
		},
		Output: OutputConfig{Format: "text"},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if !oneOf(c.Log.Format, "text", "json") {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if !oneOf(c.Decode.Binarizer, "hybrid", "global") {
		errs = append(errs, fmt.Errorf("decode.binarizer %q must be hybrid or global", c.Decode.Binarizer))
	}
	if c.Decode.Workers < 1 {
		errs = append(errs, fmt.Errorf("decode.workers must be at least 1, got %d", c.Decode.Workers))
	}
	if _, err := decoder.ParseECLevel(c.Encode.ErrorCorrection); err != nil {
		errs = append(errs, fmt.Errorf("encode.error_correction: %w", err))
	}
	if c.Encode.Size < 1 {
		errs = append(errs, fmt.Errorf("encode.size must be at least 1, got %d", c.Encode.Size))
	}
	if c.Encode.Margin < 0 {
		errs = append(errs, fmt.Errorf("encode.margin must not be negative, got %d", c.Encode.Margin))
	}
	if _, err := encoder.ParseFormat(c.Encode.Format); err != nil {
		errs = append(errs, fmt.Errorf("encode.format: %w", err))
	}
	if !oneOf(c.Output.Format, "text", "json", "yaml") {
		errs = append(errs, fmt.Errorf("output.format %q must be text, json or yaml", c.Output.Format))
	}
	return errors.Join(errs...)
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if strings.EqualFold(s, o) {
			return true
		}
	}
	return false
}

// SlogLevel parses Level as one of debug, info, warn or error.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Options converts the decode settings for a reader logging to logger.
func (d DecodeConfig) Options(logger *slog.Logger) *qrcode.DecodeOptions {
	return &qrcode.DecodeOptions{
		TryHarder:    d.TryHarder,
		PureBarcode:  d.PureBarcode,
		AlsoInverted: d.AlsoInverted,
		CharacterSet: d.CharacterSet,
		Logger:       logger,
	}
}

// Options converts the encode settings for image output. The format must
// already be valid.
func (e EncodeConfig) Options() encoder.Options {
	o := encoder.DefaultOptions()
	o.Size = e.Size
	o.Margin = e.Margin
	o.ErrorCorrection = e.ErrorCorrection
	o.CharacterSet = e.CharacterSet
	if f, err := encoder.ParseFormat(e.Format); err == nil {
		o.Format = f
	}
	return o
}
