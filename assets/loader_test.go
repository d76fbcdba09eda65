package assets

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/echoflaresat/earthglow/config"
	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/texture"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderPublishesSlots(t *testing.T) {
	dir := t.TempDir()
	day := filepath.Join(dir, "day.png")
	mask := filepath.Join(dir, "mask.png")
	writePNG(t, day)
	writePNG(t, mask)

	sc := scene.Build(scene.DefaultOptions())
	cfg := config.AssetsConfig{
		Day:            day,
		SpecularClouds: mask,
		Night:          filepath.Join(dir, "missing.jpg"),
		Anisotropy:     16,
	}
	l := NewLoader(2, 0, nil)
	l.Start(context.Background(), Requests(cfg, sc))
	l.Wait()
	defer l.Close()

	d := sc.Texture(scene.TexDay).Get()
	if d == nil {
		t.Fatal("day slot empty")
	}
	if d.ColorSpace != texture.SRGB || d.Anisotropy != texture.MaxAnisotropy || d.Filter != texture.Bilinear {
		t.Fatalf("day texture = %+v", d)
	}
	if m := sc.Texture(scene.TexSpecularClouds).Get(); m == nil || m.ColorSpace != texture.Linear {
		t.Fatalf("mask texture = %+v", m)
	}

	if sc.Texture(scene.TexNight).Loaded() {
		t.Fatal("missing night texture published")
	}
	if l.Err(scene.TexNight) == nil {
		t.Fatal("missing night texture not recorded")
	}
	if got := sc.Texture(scene.TexNight).SampleUV(0.5, 0.5); got.A != 0 {
		t.Fatalf("blank slot sample = %+v", got)
	}

	// Unconfigured paths are skipped, not failures.
	if l.Err(scene.TexBump) != nil || sc.Texture(scene.TexBump).Loaded() {
		t.Fatal("unconfigured bump map touched")
	}
}

func TestLoaderCancelled(t *testing.T) {
	dir := t.TempDir()
	day := filepath.Join(dir, "day.png")
	writePNG(t, day)

	sc := scene.Build(scene.DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader(1, 8, nil)
	l.Start(ctx, Requests(config.AssetsConfig{Day: day}, sc))
	l.Wait()
	if sc.Texture(scene.TexDay).Loaded() {
		t.Fatal("cancelled load published a texture")
	}
}

func TestAnisotropyClamp(t *testing.T) {
	cases := []struct {
		max, req, want int
	}{
		{0, 16, 8},
		{4, 16, 4},
		{8, 1, 1},
		{8, 0, 1},
	}
	for _, c := range cases {
		l := NewLoader(1, c.max, nil)
		if got := l.anisotropy(c.req); got != c.want {
			t.Errorf("anisotropy(max %d, req %d) = %d, want %d", c.max, c.req, got, c.want)
		}
	}
}

func TestWaitWithoutStart(t *testing.T) {
	NewLoader(1, 0, nil).Wait()
}

func TestCloseWaitsForRunningLoads(t *testing.T) {
	dir := t.TempDir()
	day := filepath.Join(dir, "day.png")
	writePNG(t, day)

	sc := scene.Build(scene.DefaultOptions())
	l := NewLoader(1, 0, nil)
	l.Start(context.Background(), Requests(config.AssetsConfig{Day: day}, sc))
	l.Close()

	if !sc.Texture(scene.TexDay).Loaded() {
		t.Fatal("Close returned before the day texture finished")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.loaded) != 0 {
		t.Fatalf("%d textures still held after Close", len(l.loaded))
	}
}
