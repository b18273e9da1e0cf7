package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gopkg.in/yaml.v3"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/binarizer"
	"github.com/coco-projects/qrcode/config"
	"github.com/coco-projects/qrcode/qr"
)

// fileResult is one line of decode output.
type fileResult struct {
	File         string       `json:"file" yaml:"file"`
	Text         string       `json:"text,omitempty" yaml:"text,omitempty"`
	ECLevel      string       `json:"ec_level,omitempty" yaml:"ec_level,omitempty"`
	Symbology    string       `json:"symbology,omitempty" yaml:"symbology,omitempty"`
	Corrected    int          `json:"errors_corrected" yaml:"errors_corrected"`
	Mirrored     bool         `json:"mirrored,omitempty" yaml:"mirrored,omitempty"`
	Points       [][2]float64 `json:"points,omitempty" yaml:"points,omitempty,flow"`
	Error        string       `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind    string       `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	decodeFailed bool
}

func newDecodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [files...]",
		Short: "Decode QR Codes in image files",
		Long: `Decode the QR Code in each image file. Files are processed in parallel
by --workers goroutines; output keeps the argument order.

Examples:
  qrscan decode code.png
  qrscan decode --pure --output yaml render.bmp
  qrscan decode --workers 8 --metrics-file qrscan.prom scans/*.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runDecode,
	}
	f := cmd.Flags()
	f.Bool("try-harder", false, "also look for rotated and harder to find symbols")
	f.Bool("pure", false, "the image is a clean render with nothing but the symbol")
	f.Bool("also-inverted", false, "retry with light and dark swapped")
	f.String("charset", "", "character set for byte segments without an ECI")
	f.String("binarizer", "hybrid", "thresholding method (hybrid, global)")
	f.Int("workers", 0, "files decoded in parallel (default number of CPUs)")
	f.StringP("output", "o", "text", "output format (text, json, yaml)")
	a.bind(f, "decode.try_harder", "try-harder")
	a.bind(f, "decode.pure_barcode", "pure")
	a.bind(f, "decode.also_inverted", "also-inverted")
	a.bind(f, "decode.character_set", "charset")
	a.bind(f, "decode.binarizer", "binarizer")
	a.bind(f, "output.format", "output")
	// A zero flag default would override the CPU-based config default.
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if cmd.Flags().Changed("workers") {
			a.cfg.Decode.Workers, _ = cmd.Flags().GetInt("workers")
		}
	}
	return cmd
}

func (a *app) runDecode(cmd *cobra.Command, paths []string) error {
	defer a.flushMetrics()
	if a.cfg.Decode.Workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", a.cfg.Decode.Workers)
	}
	results := decodeFiles(a.cfg.Decode, paths, qr.NewReader().WithRecorder(a.recorder), a.logger)
	if err := writeResults(cmd.OutOrStdout(), a.cfg.Output.Format, results); err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.decodeFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to decode", failed, len(results))
	}
	return nil
}

// decodeFiles decodes paths with a bounded pool of workers. Results are in
// the order of paths.
func decodeFiles(cfg config.DecodeConfig, paths []string, reader *qr.Reader, logger *slog.Logger) []fileResult {
	results := make([]fileResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(cfg.Workers, len(paths)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = decodeFile(cfg, paths[i], reader, logger.With("file", paths[i]))
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func decodeFile(cfg config.DecodeConfig, path string, reader *qr.Reader, logger *slog.Logger) fileResult {
	out := fileResult{File: path}
	res, err := decodePath(cfg, path, reader, logger)
	if err != nil {
		logger.Debug("decode failed", "err", err)
		out.decodeFailed = true
		out.Error = err.Error()
		// Only failures inside the decoder carry a kind; file and image
		// format errors do not.
		var de *qrcode.DecodeError
		if errors.As(err, &de) {
			out.ErrorKind = de.Kind.Error()
		}
		return out
	}
	out.Text = res.Text
	out.ECLevel = res.String(qrcode.MetadataErrorCorrectionLevel)
	out.Symbology = res.String(qrcode.MetadataSymbologyIdentifier)
	out.Corrected, _ = res.Int(qrcode.MetadataErrorsCorrected)
	out.Mirrored, _ = res.Metadata[qrcode.MetadataMirrored].(bool)
	for _, p := range res.Points {
		out.Points = append(out.Points, [2]float64{p.X, p.Y})
	}
	return out
}

func decodePath(cfg config.DecodeConfig, path string, reader *qr.Reader, logger *slog.Logger) (*qrcode.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	logger.Debug("read image", "format", format, "bounds", img.Bounds().String())

	source := qrcode.NewImageLuminanceSource(img)
	var bin qrcode.Binarizer
	if strings.EqualFold(cfg.Binarizer, "global") {
		bin = binarizer.NewGlobalHistogram(source)
	} else {
		bin = binarizer.NewHybrid(source)
	}
	return reader.Decode(qrcode.NewBinaryBitmap(bin), cfg.Options(logger))
}

func writeResults(w io.Writer, format string, results []fileResult) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		var errs []error
		for _, r := range results {
			var err error
			if r.Error != "" {
				_, err = fmt.Fprintf(w, "%s: error: %s\n", r.File, r.Error)
			} else {
				_, err = fmt.Fprintf(w, "%s: %s\n", r.File, r.Text)
			}
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}
	return fmt.Errorf("unknown output format %q", format)
}
