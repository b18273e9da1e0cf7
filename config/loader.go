package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "qrscan"

	// EnvPrefix prefixes environment overrides, e.g. QRSCAN_DECODE_WORKERS.
	EnvPrefix = "QRSCAN"
)

// Loader reads a Config through a viper instance. Flags bound to the same
// instance take precedence over the file and environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader wraps v, or a fresh viper instance when v is nil.
func NewLoader(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}
	return &Loader{v: v}
}

func (l *Loader) Viper() *viper.Viper { return l.v }

// Load searches the standard paths for qrscan.yaml, or reads configFile
// when it is not empty. A missing file in the search paths is not an
// error; a missing explicit file is.
func (l *Loader) Load(configFile string) (*Config, error) {
	l.setDefaults()
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed is the file Load read, or "".
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if dir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		l.v.AddConfigPath(filepath.Join(dir, "qrscan"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "qrscan"))
	}
	l.v.AddConfigPath("/etc/qrscan")
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()
	l.v.SetDefault("log.level", d.Log.Level)
	l.v.SetDefault("log.format", d.Log.Format)

	l.v.SetDefault("decode.try_harder", d.Decode.TryHarder)
	l.v.SetDefault("decode.pure_barcode", d.Decode.PureBarcode)
	l.v.SetDefault("decode.also_inverted", d.Decode.AlsoInverted)
	l.v.SetDefault("decode.character_set", d.Decode.CharacterSet)
	l.v.SetDefault("decode.binarizer", d.Decode.Binarizer)
	l.v.SetDefault("decode.workers", d.Decode.Workers)

	l.v.SetDefault("encode.error_correction", d.Encode.ErrorCorrection)
	l.v.SetDefault("encode.character_set", d.Encode.CharacterSet)
	l.v.SetDefault("encode.size", d.Encode.Size)
	l.v.SetDefault("encode.margin", d.Encode.Margin)
	l.v.SetDefault("encode.format", d.Encode.Format)

	l.v.SetDefault("output.format", d.Output.Format)
	l.v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}
