package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/coco-projects/qrcode/config"
	"github.com/coco-projects/qrcode/metrics"
)

// app is the state shared by one invocation of the command tree.
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:   "qrscan",
		Short: "Decode and encode QR Codes",
		Long: `qrscan finds and decodes QR Codes in PNG, JPEG, GIF, BMP, TIFF and WebP
images, and renders text as QR Code images.

Settings come from qrscan.yaml (searched in ., $HOME/.config/qrscan and
/etc/qrscan), QRSCAN_* environment variables and flags, in increasing
order of precedence.

Examples:
  qrscan decode photo.jpg
  qrscan decode --try-harder --output json *.png
  qrscan encode "HELLO WORLD" -f out.png`,
		Version:           fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is qrscan.yaml in ., $HOME/.config/qrscan, /etc/qrscan)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	a.bind(pf, "log.level", "log-level")
	a.bind(pf, "log.format", "log-format")
	a.bind(pf, "metrics.textfile", "metrics-file")

	root.AddCommand(newDecodeCmd(a), newEncodeCmd(a))
	return root
}

// bind ties a flag to a config key. Lookup never fails for flags defined
// just before.
func (a *app) bind(fs *pflag.FlagSet, key, flag string) {
	_ = a.v.BindPFlag(key, fs.Lookup(flag))
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewLoader(a.v).Load(a.cfgFile)
	if err != nil {
		return err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(newHandler(cmd.ErrOrStderr(), cfg.Log.Format, level))
	slog.SetDefault(a.logger)
	a.recorder = metrics.NewRecorder(nil)
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded config", "file", used)
	}
	return nil
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// flushMetrics writes the textfile when one is configured.
func (a *app) flushMetrics() {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := a.recorder.WriteToTextfile(path); err != nil {
		a.logger.Error("writing metrics", "file", path, "err", err)
	}
}
