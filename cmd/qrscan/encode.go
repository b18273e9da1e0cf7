package main

import (
	"bufio"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/encoder"
)

func newEncodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <text>",
		Short: "Render text as a QR Code",
		Long: `Encode text as a QR Code. The image goes to --file, or to standard
output. When standard output is a terminal and no file is given, the symbol
is drawn with block characters instead.

Examples:
  qrscan encode "HELLO WORLD" -f hello.png
  qrscan encode --ec H --size 8 --format jpg "https://example.com" > code.jpg
  qrscan encode --text "点字"`,
		Args: cobra.ExactArgs(1),
		RunE: a.runEncode,
	}
	f := cmd.Flags()
	f.String("ec", "L", "error correction level (L, M, Q, H)")
	f.String("charset", "", "character set for byte mode (default ISO-8859-1, or UTF-8 when needed)")
	f.Int("size", 3, "pixels per module")
	f.Int("margin", qrcode.DefaultMargin, "quiet zone in modules")
	f.String("format", "png", "image format (png, jpg, bmp)")
	f.StringP("file", "f", "", "write the image to this file")
	f.Bool("text", false, "draw the symbol with block characters")
	f.Bool("invert", false, "with --text, draw dark modules as blocks")
	a.bind(f, "encode.error_correction", "ec")
	a.bind(f, "encode.character_set", "charset")
	a.bind(f, "encode.size", "size")
	a.bind(f, "encode.margin", "margin")
	a.bind(f, "encode.format", "format")
	return cmd
}

func (a *app) runEncode(cmd *cobra.Command, args []string) (err error) {
	defer a.flushMetrics()
	defer func() { a.recorder.ObserveEncode(err) }()

	content := args[0]
	opts := a.cfg.Encode.Options()
	file, _ := cmd.Flags().GetString("file")
	text, _ := cmd.Flags().GetBool("text")
	invert, _ := cmd.Flags().GetBool("invert")

	out := cmd.OutOrStdout()
	if !text && file == "" {
		text = isTerminal(out)
	}
	if text {
		code, err := encoder.Encode(content, &qrcode.EncodeOptions{
			ErrorCorrection: opts.ErrorCorrection,
			CharacterSet:    opts.CharacterSet,
		})
		if err != nil {
			return err
		}
		a.logger.Debug("encoded", "version", code.Version.Number, "mask", code.MaskPattern, "mode", code.Mode.String())
		return writeBlocks(out, encoder.RenderResult(code, 0, 0, opts.Margin), invert)
	}

	if file != "" {
		fh, cerr := os.Create(file)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := fh.Close(); err == nil {
				err = cerr
			}
		}()
		out = fh
	}
	bw := bufio.NewWriter(out)
	if err := opts.Write(bw, content); err != nil {
		return err
	}
	return bw.Flush()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeBlocks draws two module rows per line with half-block characters.
// By default light modules are drawn, which suits dark terminals.
func writeBlocks(w io.Writer, m *bitutil.BitMatrix, invert bool) error {
	glyphs := [4]string{" ", "▄", "▀", "█"}
	bw := bufio.NewWriter(w)
	for y := 0; y < m.Height(); y += 2 {
		for x := 0; x < m.Width(); x++ {
			top := m.Get(x, y) == invert
			bottom := y+1 < m.Height() && m.Get(x, y+1) == invert
			i := 0
			if top {
				i |= 2
			}
			if bottom {
				i |= 1
			}
			bw.WriteString(glyphs[i])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
