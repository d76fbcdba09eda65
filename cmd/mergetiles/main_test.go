package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeTile(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseGrid(t *testing.T) {
	cases := []struct {
		in         string
		cols, rows int
		ok         bool
	}{
		{"2x1", 2, 1, true},
		{"4X2", 4, 2, true},
		{"0x2", 0, 0, false},
		{"3", 0, 0, false},
		{"ax2", 0, 0, false},
	}
	for _, c := range cases {
		cols, rows, err := parseGrid(c.in)
		if (err == nil) != c.ok || cols != c.cols || rows != c.rows {
			t.Errorf("parseGrid(%q) = %d, %d, %v", c.in, cols, rows, err)
		}
	}
}

func TestMergePlacesTilesRowMajor(t *testing.T) {
	dir := t.TempDir()
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	paths := []string{
		writeTile(t, dir, "a.png", red),
		writeTile(t, dir, "b.png", blue),
	}
	canvas, err := merge(2, paths, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if canvas.Bounds().Dx() != 4 || canvas.Bounds().Dy() != 2 {
		t.Fatalf("canvas is %v", canvas.Bounds())
	}
	if got := canvas.NRGBAAt(0, 0); got != red {
		t.Errorf("left tile = %v", got)
	}
	if got := canvas.NRGBAAt(3, 1); got != blue {
		t.Errorf("right tile = %v", got)
	}

	out := filepath.Join(dir, "map.png")
	if err := save(out, canvas, 90); err != nil {
		t.Fatal(err)
	}
	if err := save(filepath.Join(dir, "map.bmp"), canvas, 90); err == nil {
		t.Error("bmp output accepted")
	}
}
