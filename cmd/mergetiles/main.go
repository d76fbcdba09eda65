// Command mergetiles stitches a grid of equally sized texture tiles into a
// single equirectangular map usable as a globe texture.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/echoflaresat/earthglow/logger"
	"github.com/echoflaresat/earthglow/texture"
	"go.uber.org/zap"
)

func main() {
	quality := flag.Int("quality", 95, "JPEG quality for .jpg outputs")
	level := flag.String("log-level", "info", "Log level")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <cols>x<rows> <output.png|jpg> <tile1> <tile2> ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := logger.Init(*level, ""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Named("mergetiles")

	if flag.NArg() < 3 {
		flag.Usage()
		os.Exit(1)
	}
	cols, rows, err := parseGrid(flag.Arg(0))
	if err != nil {
		log.Fatal("bad grid", zap.Error(err))
	}
	output := flag.Arg(1)
	tiles := flag.Args()[2:]
	if len(tiles) != cols*rows {
		log.Fatal("tile count mismatch", zap.Int("want", cols*rows), zap.Int("got", len(tiles)))
	}

	canvas, err := merge(cols, tiles, log)
	if err != nil {
		log.Fatal("merge failed", zap.Error(err))
	}
	if err := save(output, canvas, *quality); err != nil {
		log.Fatal("save failed", zap.String("path", output), zap.Error(err))
	}
	if fi, err := os.Stat(output); err == nil {
		log.Info("wrote map",
			zap.String("path", output),
			zap.Int("width", canvas.Bounds().Dx()),
			zap.Int("height", canvas.Bounds().Dy()),
			zap.String("size", humanize.Bytes(uint64(fi.Size()))),
		)
	}
}

// parseGrid reads a "<cols>x<rows>" layout.
func parseGrid(s string) (cols, rows int, err error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid tile layout %q, expected NxM", s)
	}
	if cols, err = strconv.Atoi(parts[0]); err != nil || cols <= 0 {
		return 0, 0, fmt.Errorf("invalid cols in %q", s)
	}
	if rows, err = strconv.Atoi(parts[1]); err != nil || rows <= 0 {
		return 0, 0, fmt.Errorf("invalid rows in %q", s)
	}
	return cols, rows, nil
}

// merge draws tiles row-major into one canvas. All tiles must share the
// size of the first.
func merge(cols int, paths []string, log *zap.Logger) (*image.NRGBA, error) {
	var canvas *image.NRGBA
	var tileW, tileH int
	rows := len(paths) / cols
	for idx, path := range paths {
		log.Debug("reading tile", zap.String("path", path))
		tile, err := texture.LoadImage(path, log)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}

		b := tile.Bounds()
		if canvas == nil {
			tileW, tileH = b.Dx(), b.Dy()
			canvas = image.NewNRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))
		} else if tileW != b.Dx() || tileH != b.Dy() {
			closeImage(tile)
			return nil, fmt.Errorf("tile %s is %dx%d, expected %dx%d", path, b.Dx(), b.Dy(), tileW, tileH)
		}

		x := (idx % cols) * tileW
		y := (idx / cols) * tileH
		draw.Draw(canvas, image.Rect(x, y, x+tileW, y+tileH), tile, b.Min, draw.Src)
		closeImage(tile)
	}
	return canvas, nil
}

func closeImage(img image.Image) {
	if c, ok := img.(io.Closer); ok {
		_ = c.Close()
	}
}

func save(output string, canvas image.Image, quality int) error {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".png":
		err = png.Encode(f, canvas)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, canvas, &jpeg.Options{Quality: quality})
	default:
		err = fmt.Errorf("unsupported output format %q", ext)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
